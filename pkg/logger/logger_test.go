package logger

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
)

// captureStderr captures stderr output for testing
func captureStderr(f func()) string {
	r, w, _ := os.Pipe()
	oldStderr := os.Stderr
	os.Stderr = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outC <- buf.String()
	}()

	f()

	w.Close()
	os.Stderr = oldStderr
	return <-outC
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   int
		logFunc func(*Logger)
		want    string
	}{
		{
			name:    "Info always shows",
			level:   0,
			logFunc: func(l *Logger) { l.Info("scan done") },
			want:    "[+] scan done",
		},
		{
			name:    "Error always shows",
			level:   0,
			logFunc: func(l *Logger) { l.Error("bad target") },
			want:    "[!] bad target",
		},
		{
			name:    "V hidden at silent",
			level:   0,
			logFunc: func(l *Logger) { l.V("progress") },
			want:    "",
		},
		{
			name:    "V shown at verbose",
			level:   1,
			logFunc: func(l *Logger) { l.V("progress") },
			want:    "[*] progress",
		},
		{
			name:    "VV hidden at verbose",
			level:   1,
			logFunc: func(l *Logger) { l.VV("internals") },
			want:    "",
		},
		{
			name:    "Detail shown at debug",
			level:   2,
			logFunc: func(l *Logger) { l.Detail("offset %d", 42) },
			want:    "[VV]   offset 42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureStderr(func() { tt.logFunc(New(tt.level)) })
			if tt.want == "" {
				if out != "" {
					t.Errorf("expected no output, got %q", out)
				}
				return
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
		})
	}
}

func TestLogger_Concurrency(t *testing.T) {
	// Mainly here for the race detector.
	l := New(2)

	oldStderr := os.Stderr
	devNull, _ := os.Open(os.DevNull)
	os.Stderr = devNull
	defer func() {
		os.Stderr = oldStderr
		devNull.Close()
	}()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			l.Info("info %d", id)
			l.V("verbose %d", id)
			l.VV("debug %d", id)
			l.Detail("detail %d", id)
		}(i)
	}
	wg.Wait()
}
