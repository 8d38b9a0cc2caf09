package common

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// TraceEntry is one structured algorithm step: a phase tag plus a message.
// Enter marks the begin half of a begin/end pair.
type TraceEntry struct {
	Phase   string
	Message string
	Enter   bool
}

// LogWriter collects trace events and errors during a compilation pass.
// It is a sink only: nothing it does can abort a check, and a nil
// *LogWriter is a valid no-op sink.
type LogWriter struct {
	traces  []TraceEntry
	errors  []error
	Verbose bool
}

func (l *LogWriter) Begin(phase, message string) {
	if l == nil {
		return
	}
	l.traces = append(l.traces, TraceEntry{Phase: phase, Message: message, Enter: true})
}

func (l *LogWriter) End(phase, message string) {
	if l == nil {
		return
	}
	l.traces = append(l.traces, TraceEntry{Phase: phase, Message: message})
}

func (l *LogWriter) Trace(phase, message string) {
	if l == nil {
		return
	}
	l.traces = append(l.traces, TraceEntry{Phase: phase, Message: message})
}

// TraceValue records an arbitrary value rendered with spew. Only used for
// verbose state dumps.
func (l *LogWriter) TraceValue(phase string, value any) {
	if l == nil || !l.Verbose {
		return
	}
	l.traces = append(l.traces, TraceEntry{Phase: phase, Message: spew.Sdump(value)})
}

func (l *LogWriter) Err(err error) {
	if l == nil || err == nil {
		return
	}
	l.errors = append(l.errors, err)
}

func (l *LogWriter) HasErrors() bool {
	return l != nil && len(l.errors) > 0
}

func (l *LogWriter) Errors() []error {
	if l == nil {
		return nil
	}
	return l.errors
}

func (l *LogWriter) Traces() []TraceEntry {
	if l == nil {
		return nil
	}
	return l.traces
}

func (l *LogWriter) Flush(w io.Writer) {
	if l == nil {
		return
	}
	if l.Verbose {
		for _, t := range l.traces {
			marker := "<"
			if t.Enter {
				marker = ">"
			}
			_, _ = fmt.Fprintf(w, "%s %s: %s\n", marker, t.Phase, t.Message)
		}
	}
	for _, e := range l.errors {
		_, _ = fmt.Fprintf(w, "%v", e)
	}
	l.traces = nil
	l.errors = nil
}
