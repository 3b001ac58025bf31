// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/camsort/internal/models"
	"github.com/desertthunder/camsort/internal/shared"
)

// MockPlaylistService is a test double for services.PlaylistService.
//
// Reorder records the IDs it receives so tests can assert on the written order.
type MockPlaylistService struct {
	PlaylistList []models.Playlist
	Meta         map[string]models.Playlist
	Items        map[string][]models.Track
	TracksErr    error
	ReorderErr   error

	mu      sync.Mutex
	Written map[string][]string
}

func NewMockPlaylistService() *MockPlaylistService {
	return &MockPlaylistService{
		Meta:    make(map[string]models.Playlist),
		Items:   make(map[string][]models.Track),
		Written: make(map[string][]string),
	}
}

// AddPlaylist registers a playlist and its tracks.
func (m *MockPlaylistService) AddPlaylist(p models.Playlist, tracks ...models.Track) {
	if p.TrackCount == 0 {
		p.TrackCount = len(tracks)
	}
	m.Meta[p.ID] = p
	m.Items[p.ID] = tracks
	m.PlaylistList = append(m.PlaylistList, p)
}

func (m *MockPlaylistService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return m.PlaylistList, nil
}

func (m *MockPlaylistService) Playlist(ctx context.Context, id string) (*models.Playlist, error) {
	p, ok := m.Meta[id]
	if !ok {
		return nil, shared.ErrPlaylistNotFound
	}
	return &p, nil
}

func (m *MockPlaylistService) Tracks(ctx context.Context, id string) ([]models.Track, error) {
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	tracks, ok := m.Items[id]
	if !ok {
		return nil, shared.ErrPlaylistNotFound
	}
	return slices.Clone(tracks), nil
}

func (m *MockPlaylistService) Reorder(ctx context.Context, id string, trackIDs []string) error {
	if m.ReorderErr != nil {
		return m.ReorderErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Written[id] = slices.Clone(trackIDs)
	return nil
}

func (m *MockPlaylistService) Name() string { return "mock" }

// MockLookupService is a test double for services.LookupService keyed by title.
// Titles without a registered result return shared.ErrNoResultFound.
type MockLookupService struct {
	Results map[string]*models.LookupResult
	Errors  map[string]error

	mu    sync.Mutex
	Calls []string
}

func NewMockLookupService() *MockLookupService {
	return &MockLookupService{
		Results: make(map[string]*models.LookupResult),
		Errors:  make(map[string]error),
	}
}

func (m *MockLookupService) Lookup(ctx context.Context, title, artist string) (*models.LookupResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, title)
	m.mu.Unlock()

	if err, ok := m.Errors[title]; ok {
		return nil, err
	}
	if r, ok := m.Results[title]; ok {
		return r, nil
	}
	return nil, shared.ErrNoResultFound
}

// CallCount returns the number of Lookup calls so far.
func (m *MockLookupService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// Resolved returns a track enriched with the given key, mode and tempo.
func Resolved(id string, pitchClass int, mode models.Mode, tempo float64) models.Track {
	t := models.NewTrack(id, "Track "+id, "Artist", 0)
	t.Key, t.Mode, t.Tempo, t.Source = pitchClass, mode, tempo, models.SourceLocal
	return t
}
