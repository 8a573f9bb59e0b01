package triggerlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Logger is the append-only record of fired alerts. One line per trigger,
// newest last. It is separate from diagnostic logging: its contents are
// served back over the read contract Get(n).
type Logger struct {
	path string
	now  func() time.Time
}

func New(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	_ = f.Close()
	return &Logger{path: path, now: time.Now}, nil
}

func (l *Logger) Append(entry string) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s: %s\n", l.now().Format("2006-01-02T15:04:05"), entry)
	return err
}

// Get returns the n most recent lines, oldest first; n == 0 returns the
// whole log.
func (l *Logger) Get(n int) ([]string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if n <= 0 || n >= len(lines) {
		return lines, nil
	}
	return lines[len(lines)-n:], nil
}
