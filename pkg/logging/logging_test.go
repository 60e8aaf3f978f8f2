package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel_ShouldFallBackToInfo(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}

	for input, expected := range cases {
		if got := ParseLevel(input); got != expected {
			t.Errorf("ParseLevel(%q) = %v, expected %v", input, got, expected)
		}
	}
}

func TestNewLogger_ShouldWriteStructuredEntriesAboveLevel(t *testing.T) {
	buff := &bytes.Buffer{}
	logger := newLogger(Config{Level: "warn"}, buff)

	logger.Info().Msg("hidden")
	logger.Warn().Str("selector", "API_KEY_1").Msg("visible")

	var entry map[string]interface{}
	if err := json.Unmarshal(buff.Bytes(), &entry); err != nil {
		t.Fatalf("expected exactly one json entry, got %q: %s", buff.String(), err)
	}

	if entry["message"] != "visible" || entry["selector"] != "API_KEY_1" {
		t.Errorf("unexpected log entry: %v", entry)
	}
}
