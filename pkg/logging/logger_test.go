package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Expected default pretty to be false")
	}
	if cfg.Output == nil {
		t.Error("Expected default output to be set")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel}, // unknown defaults to info
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "warning", "error", "Debug"} {
		if !ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = false, want true", level)
		}
	}
	for _, level := range []string{"", "verbose", "fatal"} {
		if ValidLevel(level) {
			t.Errorf("ValidLevel(%q) = true, want false", level)
		}
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	tests := []struct {
		level   LogLevel
		visible []string
		hidden  []string
	}{
		{LevelDebug, []string{"debug msg", "info msg", "warn msg"}, nil},
		{LevelInfo, []string{"info msg", "warn msg"}, []string{"debug msg"}},
		{LevelWarn, []string{"warn msg", "error msg"}, []string{"debug msg", "info msg"}},
		{LevelError, []string{"error msg"}, []string{"info msg", "warn msg"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			buf := &bytes.Buffer{}
			Setup(Config{Level: tt.level, Output: buf})

			logger := NewLogger("fetcher")
			logger.Debug().Msg("debug msg")
			logger.Info().Msg("info msg")
			logger.Warn().Msg("warn msg")
			logger.Error().Msg("error msg")

			output := buf.String()
			for _, msg := range tt.visible {
				if !strings.Contains(output, msg) {
					t.Errorf("Expected %q at level %s, got %q", msg, tt.level, output)
				}
			}
			for _, msg := range tt.hidden {
				if strings.Contains(output, msg) {
					t.Errorf("%q should be filtered at level %s", msg, tt.level)
				}
			}
		})
	}
}

func TestNewLogger_TagsComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Output: buf})

	logger := NewLogger("correlator")
	logger.Info().Msg("Correlation complete")

	output := buf.String()
	if !strings.Contains(output, `"component":"correlator"`) {
		t.Errorf("Expected component field in %q", output)
	}
	if !strings.Contains(output, "Correlation complete") {
		t.Errorf("Expected message in %q", output)
	}
}

func TestSetup_Pretty(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})

	logger.Info().Str("resource", "people").Msg("pretty message")

	output := buf.String()
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("Pretty output should not be JSON, got %q", output)
	}
	if !strings.Contains(output, "pretty message") || !strings.Contains(output, "resource=") {
		t.Errorf("Pretty output missing fields: %q", output)
	}
}
