package logger

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON production logger. Unknown levels fall back to info.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Deduper collapses runs of identical messages into one "msg (N)" line,
// written once the run ends or flushDelay passes without a repeat.
type Deduper struct {
	log        *zap.Logger
	mu         sync.Mutex
	lastMsg    string
	count      int
	flushDelay time.Duration
	timer      *time.Timer
}

func NewDeduper(log *zap.Logger, flushDelay time.Duration) *Deduper {
	return &Deduper{log: log, flushDelay: flushDelay}
}

func (d *Deduper) flush() {
	if d.count == 0 {
		return
	}
	if d.count == 1 {
		d.log.Info(d.lastMsg)
	} else {
		d.log.Info(fmt.Sprintf("%s (%d)", d.lastMsg, d.count))
	}
	d.count = 0
	d.lastMsg = ""
}

// Flush writes any pending message now.
func (d *Deduper) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.flush()
}

func (d *Deduper) Infof(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	if msg == d.lastMsg {
		d.count++
	} else {
		d.flush()
		d.lastMsg = msg
		d.count = 1
	}
	d.timer = time.AfterFunc(d.flushDelay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.flush()
	})
}
