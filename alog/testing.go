package alog

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test returns a logger for unit tests. It logs every level, in the text format,
// into memory and offers assertions on the logged lines.
// Like testify, every assertion reports to t and returns whether it passed.
func Test(t *testing.T) *TestLogger {
	if t == nil {
		panic("alog: Test called with nil *testing.T")
	}

	rec := &recorder{}

	return &TestLogger{
		Logger: slog.New(newHandler(
			WithLevel(LevelDebug),
			WithHandler(slog.NewTextHandler(rec, debugHandlerOptions())),
		)),
		t:   t,
		rec: rec,
	}
}

// TestLogger can be injected wherever a Logger or *slog.Logger is expected.
type TestLogger struct {
	*slog.Logger

	t   *testing.T
	rec *recorder
}

var (
	_ Logger  = (*TestLogger)(nil)
	_ Leveler = (*TestLogger)(nil)
)

func (l *TestLogger) SetLevel(level slog.Level) {
	Unwrap(l.Logger).SetLevel(level)
}

func (l *TestLogger) Level() slog.Level {
	return Unwrap(l.Logger).Level()
}

// Lines returns every logged line, including its trailing newline.
func (l *TestLogger) Lines() []string {
	return l.rec.all()
}

func (l *TestLogger) String() string {
	return strings.Join(l.Lines(), "")
}

func (l *TestLogger) Empty(msgAndArgs ...any) bool {
	l.t.Helper()

	return l.Total(0, msgAndArgs...)
}

func (l *TestLogger) NotEmpty(msgAndArgs ...any) bool {
	l.t.Helper()

	if len(l.Lines()) == 0 {
		return assert.Fail(l.t, "nothing was logged", msgAndArgs...)
	}

	return true
}

// Total asserts that exactly total lines are logged.
func (l *TestLogger) Total(total int, msgAndArgs ...any) bool {
	l.t.Helper()

	if got := len(l.Lines()); got != total {
		return assert.Fail(l.t, fmt.Sprintf("expected %d logged lines, got: %d\n%s", total, got, l), msgAndArgs...)
	}

	return true
}

// Contains asserts that at least one line contains substr.
func (l *TestLogger) Contains(substr string, msgAndArgs ...any) bool {
	l.t.Helper()

	if l.matches(substr) == 0 {
		return assert.Fail(l.t, fmt.Sprintf("no logged line contains: %s\n%s", substr, l), msgAndArgs...)
	}

	return true
}

// NotContains asserts that no line contains substr.
func (l *TestLogger) NotContains(substr string, msgAndArgs ...any) bool {
	l.t.Helper()

	if n := l.matches(substr); n > 0 {
		return assert.Fail(l.t, fmt.Sprintf("%d logged lines contain: %s", n, substr), msgAndArgs...)
	}

	return true
}

func (l *TestLogger) matches(substr string) int {
	var n int

	for _, line := range l.Lines() {
		if strings.Contains(line, substr) {
			n++
		}
	}

	return n
}

// recorder keeps each write of the text handler as one line.
type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = append(r.lines, string(p))

	return len(p), nil
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.lines...)
}
