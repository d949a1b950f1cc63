// Folio - Book Community Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/folio

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func newCapture() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(NewSlogHandler(zerolog.New(&buf))), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return m
}

func TestSlogHandler_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "debug"},
		{slog.LevelInfo, "info"},
		{slog.LevelWarn, "warn"},
		{slog.LevelError, "error"},
		{slog.LevelError + 4, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			logger, buf := newCapture()
			logger.Log(context.Background(), tt.level, "msg")
			if got := decodeLine(t, buf)["level"]; got != tt.want {
				t.Errorf("level = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler(zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = true for a warn logger")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false for a warn logger")
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	t.Parallel()

	logger, buf := newCapture()
	logger.With("service", "retrain-service").
		WithGroup("event").
		Info("delivered",
			"topic", "folio.ratings.changed",
			"attempt", 2,
			"ok", true,
			"elapsed", 1500*time.Millisecond,
			"err", errors.New("late"),
			slog.Group("meta", "source", "poller"),
		)

	m := decodeLine(t, buf)
	want := map[string]any{
		"message":           "delivered",
		"service":           "retrain-service",
		"event.topic":       "folio.ratings.changed",
		"event.attempt":     float64(2),
		"event.ok":          true,
		"event.err":         "late",
		"event.meta.source": "poller",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %v, want %v (line %s)", k, m[k], v, buf.String())
		}
	}
	if _, ok := m["event.elapsed"]; !ok {
		t.Errorf("missing event.elapsed in %s", buf.String())
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler(zerolog.Nop())
	if got := h.WithGroup(""); got != h {
		t.Error("WithGroup(\"\") returned a new handler, want the receiver")
	}
}

func TestSlogHandler_NestedGroupsOrder(t *testing.T) {
	t.Parallel()

	logger, buf := newCapture()
	logger.WithGroup("outer").WithGroup("inner").Info("x", "k", "v")

	if m := decodeLine(t, buf); m["outer.inner.k"] != "v" {
		t.Errorf("line = %s, want outer.inner.k", buf.String())
	}
}

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	previous := Logger()
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { SetLogger(previous) })

	NewSlogLogger().Info("via slog", "books", 3)

	if out := buf.String(); !strings.Contains(out, "via slog") || !strings.Contains(out, `"books":3`) {
		t.Errorf("output = %s, want slog record on the global logger", out)
	}
}
