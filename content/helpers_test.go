package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// recordLogger captures formatted messages per level.
type recordLogger struct {
	mu    sync.Mutex
	warns []string
	infos []string
	errs  []string
}

func (l *recordLogger) add(dst *[]string, s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*dst = append(*dst, s)
}

func (l *recordLogger) Debug(args ...any)                 {}
func (l *recordLogger) Debugf(format string, args ...any) {}
func (l *recordLogger) Info(args ...any)                  { l.add(&l.infos, fmt.Sprint(args...)) }
func (l *recordLogger) Infof(format string, args ...any)  { l.add(&l.infos, fmt.Sprintf(format, args...)) }
func (l *recordLogger) Warn(args ...any)                  { l.add(&l.warns, fmt.Sprint(args...)) }
func (l *recordLogger) Warnf(format string, args ...any)  { l.add(&l.warns, fmt.Sprintf(format, args...)) }
func (l *recordLogger) Error(args ...any)                 { l.add(&l.errs, fmt.Sprint(args...)) }
func (l *recordLogger) Errorf(format string, args ...any) { l.add(&l.errs, fmt.Sprintf(format, args...)) }

func (l *recordLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warns)
}

func writeContent(t *testing.T, root string, typ Type, name, body string) string {
	t.Helper()
	dir := filepath.Join(root, typ.Dir())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
