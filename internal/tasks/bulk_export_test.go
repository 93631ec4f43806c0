package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tunesmith/internal/formatter"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
	th "github.com/desertthunder/tunesmith/internal/testing"
)

func bulkFixture() (*th.MockPlaylistStore, *th.MockCatalog) {
	songs := generatedSongs(4)

	first := models.NewPersistedPlaylist("Morning Coffee", "", "chill")
	first.ID = "pl-1"
	second := models.NewPersistedPlaylist("Night Drive", "", "focus")
	second.ID = "pl-2"

	store := th.NewMockPlaylistStore(first, songs...)
	store.AddPlaylist(second, songs...)
	return store, catalogFor(songs, func(int) bool { return true })
}

func TestBulkExport(t *testing.T) {
	tests := []struct {
		name        string
		ids         []string
		format      string
		wantSuccess int
		wantFailed  int
		wantExt     string
	}{
		{name: "all playlists json", ids: []string{"pl-1", "pl-2"}, format: formatter.FormatJSON, wantSuccess: 2, wantExt: ".json"},
		{name: "csv reports", ids: []string{"pl-1", "pl-2"}, format: formatter.FormatCSV, wantSuccess: 2, wantExt: "_report.csv"},
		{name: "missing playlist is a partial failure", ids: []string{"pl-1", "missing"}, format: formatter.FormatMarkdown, wantSuccess: 1, wantFailed: 1, wantExt: ".md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, catalog := bulkFixture()
			engine := NewPlaylistEngine(store, catalog, nil, nil)
			dir := filepath.Join(t.TempDir(), "out")

			result, err := engine.BulkExport(context.Background(), nil, tt.ids, BulkExportOpts{
				Format:     tt.format,
				OutputDir:  dir,
				NumWorkers: 2,
				RateLimit:  100,
			})
			if err != nil {
				t.Fatalf("BulkExport() error = %v", err)
			}

			if result.TotalPlaylists != len(tt.ids) {
				t.Errorf("TotalPlaylists = %d, want %d", result.TotalPlaylists, len(tt.ids))
			}
			if result.SuccessfulExports != tt.wantSuccess || result.FailedExports != tt.wantFailed {
				t.Errorf("got %d successful / %d failed, want %d / %d", result.SuccessfulExports, result.FailedExports, tt.wantSuccess, tt.wantFailed)
			}
			if len(catalog.Created()) != tt.wantSuccess {
				t.Errorf("expected %d remote playlists, got %d", tt.wantSuccess, len(catalog.Created()))
			}

			for _, res := range result.Results {
				if !res.Success {
					if res.Error == nil {
						t.Errorf("failed result %s has no error", res.PlaylistID)
					}
					continue
				}
				if len(res.Files) != 1 || !strings.HasSuffix(res.Files[0], tt.wantExt) {
					t.Errorf("unexpected report files for %s: %v", res.PlaylistID, res.Files)
					continue
				}
				th.AssertFileExists(t, res.Files[0])
			}

			th.AssertFileExists(t, result.ManifestPath)
			var manifest map[string]any
			if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
				t.Fatalf("manifest is not JSON: %v", err)
			}
			if manifest["format"] != tt.format {
				t.Errorf("manifest format = %v, want %s", manifest["format"], tt.format)
			}
		})
	}
}

func TestBulkExport_FailedPlaylistStillReported(t *testing.T) {
	store, _ := bulkFixture()
	catalog := &th.MockCatalog{}
	engine := NewPlaylistEngine(store, catalog, nil, nil)
	dir := t.TempDir()

	result, err := engine.BulkExport(context.Background(), nil, []string{"pl-1"}, BulkExportOpts{OutputDir: dir, RateLimit: 100})
	if err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}

	if result.FailedExports != 1 {
		t.Fatalf("expected the unmatched playlist to fail, got %+v", result)
	}
	res := result.Results[0]
	if !errors.Is(res.Error, shared.ErrLowMatchRate) {
		t.Errorf("expected ErrLowMatchRate, got %v", res.Error)
	}
	if len(res.Files) != 1 {
		t.Fatalf("expected a report for the failed export, got %v", res.Files)
	}
	if content := th.MustReadFile(t, res.Files[0]); !strings.Contains(content, `"success": false`) {
		t.Errorf("report should mark the export as failed")
	}
}

func TestBulkExport_Defaults(t *testing.T) {
	opts := BulkExportOpts{NumWorkers: 50}.withDefaults()

	if opts.Platform != "spotify" {
		t.Errorf("Platform = %q, want spotify", opts.Platform)
	}
	if opts.Format != formatter.FormatJSON {
		t.Errorf("Format = %q, want json", opts.Format)
	}
	if opts.NumWorkers != 5 {
		t.Errorf("NumWorkers = %d, want 5", opts.NumWorkers)
	}
	if opts.RateLimit != 1 {
		t.Errorf("RateLimit = %v, want 1", opts.RateLimit)
	}
	if !strings.HasPrefix(opts.OutputDir, "tunesmith_export_") {
		t.Errorf("OutputDir = %q", opts.OutputDir)
	}
}

func TestBulkExport_InvalidOptions(t *testing.T) {
	store, catalog := bulkFixture()
	engine := NewPlaylistEngine(store, catalog, nil, nil)

	t.Run("unknown format", func(t *testing.T) {
		_, err := engine.BulkExport(context.Background(), nil, []string{"pl-1"}, BulkExportOpts{Format: "xml", OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("output directory cannot be created", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := engine.BulkExport(context.Background(), nil, []string{"pl-1"}, BulkExportOpts{OutputDir: filepath.Join(blocker, "out")})
		if err == nil {
			t.Error("expected error")
		}
	})
}

func TestBulkExport_ContextCancellation(t *testing.T) {
	store, catalog := bulkFixture()
	engine := NewPlaylistEngine(store, catalog, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.BulkExport(ctx, nil, []string{"pl-1", "pl-2"}, BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 100})
	if err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}
	if result.FailedExports != 2 {
		t.Errorf("expected every playlist to fail after cancellation, got %+v", result)
	}
	if len(catalog.Created()) != 0 {
		t.Error("no playlist should be created after cancellation")
	}
}

func TestBulkExport_ProgressUpdates(t *testing.T) {
	store, catalog := bulkFixture()
	engine := NewPlaylistEngine(store, catalog, nil, nil)

	progress := make(chan ProgressUpdate, 16)
	if _, err := engine.BulkExport(context.Background(), progress, []string{"pl-1", "pl-2"}, BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 100}); err != nil {
		t.Fatalf("BulkExport() error = %v", err)
	}
	close(progress)

	count := 0
	for update := range progress {
		if update.Phase != ExportPlaylist {
			t.Errorf("unexpected phase %v", update.Phase)
		}
		count++
	}
	if count != 4 {
		t.Errorf("expected 4 progress updates, got %d", count)
	}
}
