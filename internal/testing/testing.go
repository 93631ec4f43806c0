// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// TrackID returns a deterministic, well-formed 22 character track id.
func TrackID(n int) string {
	return fmt.Sprintf("%022d", n)
}

// Candidate builds a catalog candidate with a valid track URI.
func Candidate(n int, name string, popularity int, artists ...string) models.CandidateTrack {
	id := TrackID(n)
	return models.CandidateTrack{
		ID:         id,
		URI:        "spotify:track:" + id,
		Name:       name,
		Artists:    artists,
		Popularity: popularity,
	}
}

// CreatedPlaylist records a [MockCatalog.CreatePlaylist] call.
type CreatedPlaylist struct {
	OwnerID     string
	Name        string
	Description string
	Public      bool
}

// MockCatalog is a test double for services.Catalog. It is safe for concurrent use.
type MockCatalog struct {
	// SearchFunc answers searches. A nil SearchFunc returns no candidates.
	SearchFunc func(query string, limit int) ([]models.CandidateTrack, error)
	CreateErr  error
	AddErr     error
	UserID     string

	mu       sync.Mutex
	queries  []string
	limits   []int
	created  []CreatedPlaylist
	added    [][]string
	addCalls int
}

func (m *MockCatalog) Search(ctx context.Context, query string, limit int) ([]models.CandidateTrack, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.limits = append(m.limits, limit)
	m.mu.Unlock()

	if m.SearchFunc == nil {
		return nil, nil
	}
	return m.SearchFunc(query, limit)
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, ownerID, name, description string, public bool) (*models.RemotePlaylist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.created = append(m.created, CreatedPlaylist{OwnerID: ownerID, Name: name, Description: description, Public: public})
	id := fmt.Sprintf("remote-%d", len(m.created))
	return &models.RemotePlaylist{ID: id, URL: "https://open.spotify.com/playlist/" + id}, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addCalls++
	if m.AddErr != nil {
		return m.AddErr
	}
	m.added = append(m.added, append([]string(nil), uris...))
	return nil
}

func (m *MockCatalog) CurrentUserID(ctx context.Context) (string, error) {
	if m.UserID == "" {
		return "mock-user", nil
	}
	return m.UserID, nil
}

func (m *MockCatalog) Name() string { return "mock" }

// Queries returns every search query in call order.
func (m *MockCatalog) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Limits returns every search limit in call order.
func (m *MockCatalog) Limits() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.limits...)
}

// Created returns every created playlist.
func (m *MockCatalog) Created() []CreatedPlaylist {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CreatedPlaylist(nil), m.created...)
}

// Added returns the uris of every successful AddTracks call.
func (m *MockCatalog) Added() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.added...)
}

// AddCalls counts AddTracks calls, failed ones included.
func (m *MockCatalog) AddCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addCalls
}

// MockPlaylistStore is an in-memory test double for tasks.PlaylistStore.
type MockPlaylistStore struct {
	Playlists map[string]*models.PersistedPlaylist
	Songs     map[string][]models.PersistedSong
	UpdateErr error

	mu      sync.Mutex
	updates map[string]string
	runs    []models.ExportRun
}

// NewMockPlaylistStore seeds a store with one playlist and its songs.
func NewMockPlaylistStore(playlist *models.PersistedPlaylist, songs ...models.GeneratedSong) *MockPlaylistStore {
	store := &MockPlaylistStore{
		Playlists: map[string]*models.PersistedPlaylist{playlist.ID: playlist},
		Songs:     map[string][]models.PersistedSong{},
	}
	for i, song := range songs {
		store.Songs[playlist.ID] = append(store.Songs[playlist.ID], models.PersistedSong{
			ID:         fmt.Sprintf("song-%d", i),
			PlaylistID: playlist.ID,
			Position:   i,
			Song:       song,
		})
	}
	return store
}

func (s *MockPlaylistStore) GetPlaylist(id string) (*models.PersistedPlaylist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.Playlists[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	copied := *playlist
	return &copied, nil
}

func (s *MockPlaylistStore) ListSongs(playlistID string) ([]models.PersistedSong, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PersistedSong(nil), s.Songs[playlistID]...), nil
}

func (s *MockPlaylistStore) UpdateRemoteID(id, platform, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	playlist, ok := s.Playlists[id]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	playlist.Platform = platform
	playlist.RemoteID = remoteID
	if s.updates == nil {
		s.updates = map[string]string{}
	}
	s.updates[id] = remoteID
	return nil
}

// RemoteID returns the remote id recorded for a playlist, empty when never updated.
func (s *MockPlaylistStore) RemoteID(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates[id]
}

// RecordExportRun keeps the run in memory.
func (s *MockPlaylistStore) RecordExportRun(run *models.ExportRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *run)
	return nil
}

// Runs returns every recorded export run.
func (s *MockPlaylistStore) Runs() []models.ExportRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ExportRun(nil), s.runs...)
}

// AddPlaylist seeds another playlist with its songs.
func (s *MockPlaylistStore) AddPlaylist(playlist *models.PersistedPlaylist, songs ...models.GeneratedSong) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Playlists[playlist.ID] = playlist
	for i, song := range songs {
		s.Songs[playlist.ID] = append(s.Songs[playlist.ID], models.PersistedSong{
			ID:         fmt.Sprintf("%s-song-%d", playlist.ID, i),
			PlaylistID: playlist.ID,
			Position:   i,
			Song:       song,
		})
	}
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

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
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

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
