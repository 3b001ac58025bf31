package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
)

// LookupCacheRepository implements [models.Repository] for [models.PersistedLookup].
type LookupCacheRepository struct {
	db *sql.DB
}

// NewLookupCacheRepository creates a new [LookupCacheRepository] with the given database connection
func NewLookupCacheRepository(db *sql.DB) *LookupCacheRepository {
	return &LookupCacheRepository{db: db}
}

const lookupColumns = `id, sequence, lookup_key, title, artist, matched_title, matched_artist, found, tempo, key_text, created_at, updated_at`

func scanLookup(row interface{ Scan(...any) error }) (*models.PersistedLookup, error) {
	var (
		id, key, title, artist, keyText string
		matchedTitle, matchedArtist     string
		sequence                        int
		found                           bool
		tempo                           float64
		createdAt, updatedAt            time.Time
	)
	if err := row.Scan(&id, &sequence, &key, &title, &artist, &matchedTitle, &matchedArtist, &found, &tempo, &keyText, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return models.RestorePersistedLookup(id, sequence, key, title, artist, matchedTitle, matchedArtist,
		found, tempo, keyText, createdAt, updatedAt), nil
}

// Create inserts a new cache row with generated ID and sequence
func (r *LookupCacheRepository) Create(l *models.PersistedLookup) error {
	sequence, err := NextSequence(r.db, "lookup_cache")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	l.SetID(shared.GenerateID())
	l.SetSequence(sequence)
	if err := l.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `INSERT INTO lookup_cache (` + lookupColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query, l.ID(), sequence, l.Key(), l.Title(), l.Artist(), l.MatchedTitle(), l.MatchedArtist(), l.Found(), l.Tempo(), l.KeyText(), l.CreatedAt(), l.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert lookup: %w", err)
	}
	return nil
}

// Get retrieves a cache row by ID
func (r *LookupCacheRepository) Get(id string) (*models.PersistedLookup, error) {
	row := r.db.QueryRow(`SELECT `+lookupColumns+` FROM lookup_cache WHERE id = ?`, id)
	l, err := scanLookup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lookup: %w", err)
	}
	return l, nil
}

// GetByKey retrieves a cache row by its normalized "title|artist" key.
// A missing row returns (nil, nil).
func (r *LookupCacheRepository) GetByKey(key string) (*models.PersistedLookup, error) {
	row := r.db.QueryRow(`SELECT `+lookupColumns+` FROM lookup_cache WHERE lookup_key = ?`, key)
	l, err := scanLookup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lookup: %w", err)
	}
	return l, nil
}

// Update rewrites the stored result of an existing row
func (r *LookupCacheRepository) Update(l *models.PersistedLookup) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	l.SetUpdatedAt(now)

	query := `UPDATE lookup_cache SET matched_title = ?, matched_artist = ?, found = ?, tempo = ?, key_text = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.Exec(query, l.MatchedTitle(), l.MatchedArtist(), l.Found(), l.Tempo(), l.KeyText(), now, l.ID())
	if err != nil {
		return fmt.Errorf("failed to update lookup: %w", err)
	}
	return rowsAffected(result, "lookup", l.ID())
}

// Delete removes a cache row by ID
func (r *LookupCacheRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM lookup_cache WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lookup: %w", err)
	}
	return rowsAffected(result, "lookup", id)
}

// List retrieves cache rows. Supported criteria: "found" (bool).
func (r *LookupCacheRepository) List(criteria map[string]any) ([]*models.PersistedLookup, error) {
	query := `SELECT ` + lookupColumns + ` FROM lookup_cache WHERE 1 = 1`
	args := []any{}

	if found, ok := criteria["found"].(bool); ok {
		query += " AND found = ?"
		args = append(args, found)
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookups: %w", err)
	}
	defer rows.Close()

	var lookups []*models.PersistedLookup
	for rows.Next() {
		l, err := scanLookup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lookup: %w", err)
		}
		lookups = append(lookups, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lookups, nil
}

// Clear removes every cache row and returns how many were deleted.
func (r *LookupCacheRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM lookup_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear lookup cache: %w", err)
	}
	return result.RowsAffected()
}

// LookupCacheAdapter implements tasks.LookupCacher using [LookupCacheRepository].
//
// Keys are normalized with [shared.NormalizeTrackKey], so cosmetic differences
// in title or artist share one row.
type LookupCacheAdapter struct {
	repo *LookupCacheRepository
}

// NewLookupCacheAdapter creates a new LookupCacheAdapter with the given repository
func NewLookupCacheAdapter(repo *LookupCacheRepository) *LookupCacheAdapter {
	return &LookupCacheAdapter{repo: repo}
}

// CachedLookup returns the cached result for a title/artist pair.
// hit is true for cached misses too, in which case result is nil.
func (a *LookupCacheAdapter) CachedLookup(title, artist string) (result *models.LookupResult, hit bool, err error) {
	l, err := a.repo.GetByKey(shared.NormalizeTrackKey(title, artist))
	if err != nil || l == nil {
		return nil, false, err
	}
	return l.Result(), true, nil
}

// CacheLookup stores a result, or a miss when result is nil. Existing rows are overwritten.
func (a *LookupCacheAdapter) CacheLookup(title, artist string, result *models.LookupResult) error {
	key := shared.NormalizeTrackKey(title, artist)
	existing, err := a.repo.GetByKey(key)
	if err != nil {
		return err
	}

	fresh := models.NewPersistedLookup(key, title, artist, result)
	if existing == nil {
		return a.repo.Create(fresh)
	}

	updated := models.RestorePersistedLookup(existing.ID(), existing.Sequence(), key, title, artist,
		fresh.MatchedTitle(), fresh.MatchedArtist(), fresh.Found(), fresh.Tempo(), fresh.KeyText(), existing.CreatedAt(), existing.UpdatedAt())
	return a.repo.Update(updated)
}
