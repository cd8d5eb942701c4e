// Package monitoring holds the diagnostic logger shared by the road and
// track packages.
package monitoring

import (
	"fmt"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Component returns a logger that prefixes each message with "[name] " and
// forwards to whatever Logf is at call time.
func Component(name string) func(format string, v ...interface{}) {
	prefix := "[" + name + "] "
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}

// Recorder captures formatted log lines. Install it with
// SetLogger(rec.Logf).
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *Recorder) Logf(format string, v ...interface{}) {
	r.mu.Lock()
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
	r.mu.Unlock()
}

// Lines returns a copy of the captured lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
