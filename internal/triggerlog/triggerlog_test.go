package triggerlog

import (
	"testing"
	"time"
)

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	l, err := New(t.TempDir() + "/triggers.log")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	l.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestAppendAndGetAll(t *testing.T) {
	l := newTestLogger(t)
	for _, e := range []string{"first", "second", "third"} {
		if err := l.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	lines, err := l.Get(0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[0] != "2026-03-01T12:00:00: first" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
}

func TestGetTailsMostRecent(t *testing.T) {
	l := newTestLogger(t)
	for _, e := range []string{"a", "b", "c", "d"} {
		if err := l.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	lines, err := l.Get(2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0] != "2026-03-01T12:00:00: c" || lines[1] != "2026-03-01T12:00:00: d" {
		t.Fatalf("unexpected tail: %v", lines)
	}
}

func TestGetMoreThanAvailable(t *testing.T) {
	l := newTestLogger(t)
	if err := l.Append("only"); err != nil {
		t.Fatalf("append: %v", err)
	}
	lines, err := l.Get(10)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
}

func TestGetEmptyLog(t *testing.T) {
	l := newTestLogger(t)
	lines, err := l.Get(0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("lines = %d, want 0", len(lines))
	}
}
