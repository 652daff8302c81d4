package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"
)

func capture(t *testing.T, verboseOn bool) *bytes.Buffer {
	t.Helper()
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseOn)
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	if IsVerbose() {
		t.Error("expected verbose to be false")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestVerboseOutput(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{name: "debug", log: func() { Debug("embedding %d chunks", 3) }, want: "[DEBUG] embedding 3 chunks\n"},
		{name: "info", log: func() { Info("collection %s ready", "sites") }, want: "[INFO] collection sites ready\n"},
		{name: "warn", log: func() { Warn("skipped %q", "Petra") }, want: "[WARN] skipped \"Petra\"\n"},
		{name: "section", log: func() { Section("Retrieval") }, want: "\n=== Retrieval ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuietWhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("d")
	Info("i")
	Warn("w")
	Section("s")

	if buf.Len() > 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestError_AlwaysPrints(t *testing.T) {
	buf := capture(t, false)

	Error("index unavailable: %s", "connection refused")

	if got := buf.String(); got != "[ERROR] index unavailable: connection refused\n" {
		t.Errorf("unexpected error output: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			Error("concurrent %d", i)
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
