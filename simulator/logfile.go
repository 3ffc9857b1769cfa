package simulator

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// CategorySystem marks run-log lines written by the orchestrator itself,
// as opposed to lines written by workers under their strategy's name.
const CategorySystem = "SYSTEM"

const timestampLayout = "2006-01-02 15:04:05.000"

const logMsgRunLogWriteFailed = "run log write failed"

// RunLog serializes timestamped line writes to a single append target from
// many concurrent callers. Every line is flushed before the call returns and
// lines from concurrent workers never interleave character-wise.
//
// Write failures never abort a run: they are reported to the ambient logger
// and the affected line is dropped.
type RunLog struct {
	mu     sync.Mutex
	file   *os.File
	out    *bufio.Writer
	logger Logger
	closed bool
}

// NewRunLog creates a run log writing to the given path, truncating any
// previous content. The logger may be nil; write failures are then silent.
func NewRunLog(path string, logger Logger) (*RunLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log %s: %w", path, err)
	}

	return &RunLog{
		file:   file,
		out:    bufio.NewWriter(file),
		logger: logger,
	}, nil
}

// Log appends one line in the format
//
//	<timestamp> - <category> - key=value - key=value - ...
//
// with millisecond timestamp resolution. Args follow the slog convention of
// alternating keys and values.
func (l *RunLog) Log(category string, args ...any) {
	var sb strings.Builder
	sb.WriteString(time.Now().Format(timestampLayout))
	sb.WriteString(" - ")
	sb.WriteString(category)

	for i := 0; i+1 < len(args); i += 2 {
		sb.WriteString(" - ")
		fmt.Fprintf(&sb, "%v=%v", args[i], args[i+1])
	}
	sb.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	if _, err := l.out.WriteString(sb.String()); err != nil {
		l.reportWriteFailure(err)
		return
	}
	if err := l.out.Flush(); err != nil {
		l.reportWriteFailure(err)
	}
}

// Close flushes and releases the underlying file. Callers defer it so the
// release happens on every exit path of a run, including early aborts.
// Log calls after Close are dropped.
func (l *RunLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	flushErr := l.out.Flush()
	closeErr := l.file.Close()

	if flushErr != nil {
		return flushErr
	}

	return closeErr
}

func (l *RunLog) reportWriteFailure(err error) {
	if l.logger != nil {
		l.logger.Warn(logMsgRunLogWriteFailed, "error", err.Error())
	}
}
