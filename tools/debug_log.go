package tools

import (
	"fmt"
	"sync"

	"github.com/golang/glog"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARN"
	case SeverityError:
		return "ERROR"
	}
	return "INFO"
}

type DebugEntry struct {
	Severity Severity
	Message  string
}

func (e DebugEntry) String() string {
	return e.Severity.String() + ": " + e.Message
}

// Append-only log of the renderer. Every entry is also forwarded to glog with the same severity.
type DebugLog struct {
	sync.Mutex
	entries []DebugEntry
}

func NewDebugLog() *DebugLog {
	return &DebugLog{}
}

func (l *DebugLog) append(severity Severity, msg string) {
	l.Lock()
	l.entries = append(l.entries, DebugEntry{Severity: severity, Message: msg})
	l.Unlock()

	switch severity {
	case SeverityWarning:
		glog.WarningDepth(2, msg)
	case SeverityError:
		glog.ErrorDepth(2, msg)
	default:
		glog.InfoDepth(2, msg)
	}
}

func (l *DebugLog) Infof(format string, args ...interface{}) {
	l.append(SeverityInfo, fmt.Sprintf(format, args...))
}

func (l *DebugLog) Warningf(format string, args ...interface{}) {
	l.append(SeverityWarning, fmt.Sprintf(format, args...))
}

func (l *DebugLog) Errorf(format string, args ...interface{}) {
	l.append(SeverityError, fmt.Sprintf(format, args...))
}

// Returns a copy of every entry logged so far
func (l *DebugLog) Entries() []DebugEntry {
	l.Lock()
	defer l.Unlock()
	return append([]DebugEntry(nil), l.entries...)
}

// Number of entries with at least the given severity
func (l *DebugLog) Count(min Severity) int {
	l.Lock()
	defer l.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Severity >= min {
			n++
		}
	}
	return n
}

// Entries rendered one per line, oldest first
func (l *DebugLog) String() string {
	entries := l.Entries()
	out := ""
	for _, e := range entries {
		out += e.String() + "\n"
	}
	return out
}
