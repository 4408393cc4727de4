package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDefaultLogger_LevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, InfoLevel, false)

	log.Debug("hidden")
	log.WithFields(Fields{"note": "a4"}).Info("detected", Fields{"hz": 440})
	log.Error(errors.New("boom"), "capture failed")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record should be filtered: %s", out)
	}
	for _, want := range []string{"msg=detected", "note=a4", "hz=440", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}

	buf.Reset()
	child := log.WithFields(Fields{"mode": "transfer"})
	log.SetLevel(DebugLevel)
	child.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("child logger should share the parent level: %s", buf.String())
	}
}

func TestDefaultLogger_Fatal(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, InfoLevel, true)
	code := -1
	log.exit = func(c int) { code = c }

	log.Fatal(errors.New("no device"), "startup failed")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(buf.String(), `"fatal":true`) {
		t.Errorf("fatal record missing marker: %s", buf.String())
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, InfoLevel, false)

	ctx := ContextWithFields(context.Background(), Fields{"session": 2})
	ctx = ContextWithFields(ctx, Fields{"mode": "detect"})
	log.WithContext(ctx).Info("started")

	for _, want := range []string{"session=2", "mode=detect"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q: %s", want, buf.String())
		}
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": DebugLevel, "": InfoLevel, "WARN": WarnLevel, "error": ErrorLevel} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = (%v, %v), want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestSetGlobalLogger_Nil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("nil global logger should become NoOpLogger, got %T", GetGlobalLogger())
	}
	Info("discarded")
}
