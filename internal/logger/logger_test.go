package logger

import (
	"bytes"
	"os"
	"testing"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestVerboseToggle(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose off initially")
	}
	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose on")
	}
}

func TestLevels(t *testing.T) {
	defer reset()

	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("split into %d chunks", 3) }, "[DEBUG] split into 3 chunks\n"},
		{"info", func() { Info("ingested %d records", 7) }, "[INFO] ingested 7 records\n"},
		{"warn", func() { Warn("store slow") }, "[WARN] store slow\n"},
		{"section", func() { Section("Ingest") }, "\n=== Ingest ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetOutput(&buf)
			SetVerbose(true)

			tt.log()
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSilentWhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")

	if buf.Len() > 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			SetVerbose(true)
			Debug("worker %d", n)
			IsVerbose()
			SetVerbose(false)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
