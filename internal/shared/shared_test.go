package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNormalizeArtistKey(t *testing.T) {
	tc := []struct {
		name   string
		artist string
		want   string
	}{
		{name: "basic normalization", artist: "Artist Name", want: "artist name"},
		{name: "extra whitespace", artist: "  Artist   Name  ", want: "artist name"},
		{name: "mixed case", artist: "ArTiSt NaMe", want: "artist name"},
		{name: "empty", artist: "   ", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeArtistKey(tt.artist)
			if got != tt.want {
				t.Errorf("NormalizeArtistKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("writes to provided writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel", func(t *testing.T) {
		logger := NewLogger(&bytes.Buffer{})
		SetLogLevel(logger, "debug")
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", logger.GetLevel())
		}

		SetLogLevel(logger, "nonsense")
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("unknown level should leave level unchanged, got %v", logger.GetLevel())
		}
	})

	t.Run("WithLogger on nil", func(t *testing.T) {
		if WithLogger(nil, "component", "test") == nil {
			t.Error("expected child logger")
		}
	})

	t.Run("GenerateID", func(t *testing.T) {
		a, b := GenerateID(), GenerateID()
		if a == "" || a == b {
			t.Errorf("expected unique non-empty ids, got %q and %q", a, b)
		}
	})
}
