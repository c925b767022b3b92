// Package console prints watched sensors as plain timestamped lines. It is
// the fallback when the dashboard cannot take over the terminal, for
// example when stdout is a pipe.
package console

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/sensdash/internal/config"
	"github.com/rileyhilliard/sensdash/internal/logger"
	"github.com/rileyhilliard/sensdash/internal/sensors"
)

const defaultTick = time.Second

// Source is the part of sensors.Registry the printer reads.
type Source interface {
	RLock()
	RUnlock()
	Watched() []*sensors.Sensor
	Update(s *sensors.Sensor, now time.Time) sensors.UpdateStatus
	Refresh() int
	UnifiedPeriod(tolerance time.Duration) time.Duration
}

// Printer polls a Source and writes one line per changed value.
type Printer struct {
	src       Source
	out       io.Writer
	log       logger.Logger
	precision time.Duration
	timeout   time.Duration
	now       func() time.Time
}

// New returns a printer using cfg's precision and timeout.
func New(src Source, cfg *config.Config, out io.Writer, log logger.Logger) *Printer {
	if log == nil {
		log = logger.Noop()
	}
	return &Printer{
		src:       src,
		out:       out,
		log:       log,
		precision: cfg.Precision,
		timeout:   cfg.Timeout,
		now:       time.Now,
	}
}

// Run scans once right away, then every unified tick until ctx is done or
// the configured timeout passes.
func (p *Printer) Run(ctx context.Context) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	tick := p.src.UnifiedPeriod(p.precision)
	if tick <= 0 {
		tick = defaultTick
	}
	p.log.Debug("console tick %v", tick)

	p.Scan(p.now())
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Scan(p.now())
		}
	}
}

// Scan updates every due sensor and prints those whose value changed.
// Returns how many lines were written.
func (p *Printer) Scan(now time.Time) int {
	p.src.RLock()
	watched := p.src.Watched()
	width := 0
	for _, s := range watched {
		width = max(width, len(s.Path()))
	}
	var lines []string
	reload := false
	for _, s := range watched {
		switch p.src.Update(s, now) {
		case sensors.Updated:
			lines = append(lines, fmt.Sprintf("%s  %-*s  %s", now.Format("15:04:05"), width, s.Path(), s.Value()))
		case sensors.NeedsReload:
			reload = true
		}
	}
	p.src.RUnlock()

	if reload {
		if n := p.src.Refresh(); n > 0 {
			p.log.Info("%d sensors went away", n)
		}
	}
	for _, l := range lines {
		fmt.Fprintln(p.out, l)
	}
	return len(lines)
}
