package simplify

import (
	"sync"

	"go.uber.org/zap"
)

// The package log sink receives verbose pass progress and ingest warnings.
// It is process-wide, defaults to a no-op logger, and is replaced rarely;
// every log call snapshots it under the mutex before calling into it, so a
// replacement never races a log in flight. Sinks must be reentrancy-safe.
var (
	sinkMu sync.Mutex
	sink   = zap.NewNop().Sugar()
)

// SetLogSink replaces the package log sink. nil restores the no-op sink.
func SetLogSink(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	sinkMu.Lock()
	sink = l
	sinkMu.Unlock()
}

func logSink() *zap.SugaredLogger {
	sinkMu.Lock()
	l := sink
	sinkMu.Unlock()
	return l
}
