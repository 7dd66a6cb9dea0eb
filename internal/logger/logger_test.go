package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewCreatesLogDir(t *testing.T) {
	root := t.TempDir()
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	l, err := New(root, "debug", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = l.Sync()

	if _, err := os.Stat(filepath.Join(root, "logs")); err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
	if !zap.L().Core().Enabled(zap.DebugLevel) {
		t.Error("debug level not applied")
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := zap.New(core).Sugar()

	ctx := WithContext(context.Background(), l.With("request_id", "abc"))
	FromContext(ctx).Info("hello")

	if logs.Len() != 1 {
		t.Fatalf("got %d entries", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["request_id"]; got != "abc" {
		t.Errorf("request_id = %v", got)
	}
	if FromContext(context.Background()) == nil {
		t.Error("FromContext without logger returned nil")
	}
}
