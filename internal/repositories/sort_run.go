package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
)

// SortRunRepository implements [models.Repository] for [models.SortRun].
type SortRunRepository struct {
	db *sql.DB
}

// NewSortRunRepository creates a new [SortRunRepository] with the given database connection
func NewSortRunRepository(db *sql.DB) *SortRunRepository {
	return &SortRunRepository{db: db}
}

const sortRunColumns = `id, sequence, playlist_id, total, resolved, from_local, from_lookup, dry_run, created_at, updated_at`

func scanSortRun(row interface{ Scan(...any) error }) (*models.SortRun, error) {
	var (
		id, playlistID       string
		sequence             int
		stats                models.RunStats
		dryRun               bool
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&id, &sequence, &playlistID, &stats.Total, &stats.Resolved, &stats.FromLocal, &stats.FromLookup, &dryRun, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	return models.RestoreSortRun(id, sequence, playlistID, stats, dryRun, createdAt, updatedAt), nil
}

// Create inserts a run with generated ID and sequence
func (r *SortRunRepository) Create(run *models.SortRun) error {
	sequence, err := NextSequence(r.db, "sort_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetID(shared.GenerateID())
	run.SetSequence(sequence)
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	s := run.Stats()
	query := `INSERT INTO sort_runs (` + sortRunColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query, run.ID(), sequence, run.PlaylistID(), s.Total, s.Resolved, s.FromLocal, s.FromLookup, run.DryRun(), run.CreatedAt(), run.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert sort run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID
func (r *SortRunRepository) Get(id string) (*models.SortRun, error) {
	run, err := scanSortRun(r.db.QueryRow(`SELECT `+sortRunColumns+` FROM sort_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sort run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sort run: %w", err)
	}
	return run, nil
}

// Update rewrites a run's counters
func (r *SortRunRepository) Update(run *models.SortRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	s := run.Stats()
	query := `UPDATE sort_runs SET total = ?, resolved = ?, from_local = ?, from_lookup = ?, dry_run = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.Exec(query, s.Total, s.Resolved, s.FromLocal, s.FromLookup, run.DryRun(), time.Now(), run.ID())
	if err != nil {
		return fmt.Errorf("failed to update sort run: %w", err)
	}
	return rowsAffected(result, "sort run", run.ID())
}

// Delete removes a run by ID
func (r *SortRunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sort_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sort run: %w", err)
	}
	return rowsAffected(result, "sort run", id)
}

// List retrieves runs newest first. Supported criteria: "playlist_id" (string), "limit" (int).
func (r *SortRunRepository) List(criteria map[string]any) ([]*models.SortRun, error) {
	query := `SELECT ` + sortRunColumns + ` FROM sort_runs WHERE 1 = 1`
	args := []any{}

	if id, ok := criteria["playlist_id"].(string); ok && id != "" {
		query += " AND playlist_id = ?"
		args = append(args, id)
	}
	query += " ORDER BY sequence DESC"
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sort runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SortRun
	for rows.Next() {
		run, err := scanSortRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sort run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}
