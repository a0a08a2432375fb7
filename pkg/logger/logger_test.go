package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitWriterLevelsAndContextFallback(t *testing.T) {
	prevLogger, prevCtx := log.Logger, zerolog.DefaultContextLogger
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.DefaultContextLogger = prevCtx
	})

	var buf bytes.Buffer
	InitWriter(&buf, Config{Debug: false})

	log.Ctx(context.Background()).Debug().Msg("hidden")
	log.Ctx(context.Background()).Info().Str("session_id", "s1").Msg("visible")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected exactly one json line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "visible" || line["session_id"] != "s1" || line["level"] != "info" {
		t.Fatalf("unexpected log line: %#v", line)
	}

	buf.Reset()
	InitWriter(&buf, Config{Debug: true})
	log.Ctx(context.Background()).Debug().Msg("shown")
	if !bytes.Contains(buf.Bytes(), []byte(`"shown"`)) {
		t.Fatalf("debug line missing: %q", buf.String())
	}
}
