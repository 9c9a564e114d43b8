package slogpretty

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyHandler_PrintsMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf))

	log.With("op", "test.op").Info("peer joined", slog.String("room", "ABCDEF"))

	out := buf.String()
	assert.Contains(t, out, "peer joined")
	assert.Contains(t, out, `"op": "test.op"`)
	assert.Contains(t, out, `"room": "ABCDEF"`)
}

func TestPrettyHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelWarn}}
	log := slog.New(opts.NewPrettyHandler(&buf))

	log.Debug("hidden")

	assert.Empty(t, buf.String())
}
