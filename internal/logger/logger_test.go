package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("listener opened")

	if !strings.Contains(buf.String(), "listener opened") {
		t.Errorf("expected output to contain message, got: %s", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	ctx := WithContext(context.Background(), log)
	ctxLog := FromContext(ctx)
	ctxLog.Info().Msg("from context")

	if buf.Len() == 0 {
		t.Error("expected log output from context logger")
	}
}

func TestFromContextDefault(t *testing.T) {
	// No logger stored: must fall back to a usable default, not panic.
	log := FromContext(context.Background())
	log.Debug().Msg("noop")
}

func TestComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	log := Component(NewWithWriter(buf), "store")

	log.Info().Msg("x")

	out := buf.String()
	if !strings.Contains(out, "component") || !strings.Contains(out, "store") {
		t.Errorf("expected component field in output, got: %s", out)
	}
}
