package logger

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"WARNING", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"VERBOSE", slog.LevelInfo, true},
	}

	for _, tc := range testCases {
		t.Run("level "+tc.input, func(t *testing.T) {
			got, err := ParseLevel(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseLevel(%q) err = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	SetLevel(slog.LevelDebug)
	if programLevel.Level() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", programLevel.Level())
	}
	SetLevel(slog.LevelInfo)
}
