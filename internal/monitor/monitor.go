// internal/monitor/monitor.go
package monitor

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/gpsdoctl/internal/gpsdo"
)

// Config is the immutable runtime config of one monitor run.
type Config struct {
	NumDumps       int           // 0 = until cancelled
	Delay          time.Duration // between iterations, never after the last
	BannerInterval int           // header is re-emitted every BannerInterval rows
}

// Monitor is a dumb, count-driven poller of the regulation core.
// It is single-use per Run and not safe for concurrent use.
type Monitor struct {
	cfg   Config
	src   Source
	out   io.Writer
	sinks []Sink
	log   zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error

	state State
	count int
}

// New creates a monitor with immutable config.
func New(cfg Config, src Source, out io.Writer, log zerolog.Logger, sinks ...Sink) (*Monitor, error) {
	if src == nil {
		return nil, errors.New("monitor: source required")
	}
	if out == nil {
		return nil, errors.New("monitor: output required")
	}
	if cfg.NumDumps < 0 {
		return nil, errors.New("monitor: num dumps must be >= 0")
	}
	if cfg.Delay < 0 {
		return nil, errors.New("monitor: delay must be >= 0")
	}
	if cfg.BannerInterval <= 0 {
		return nil, errors.New("monitor: banner interval must be > 0")
	}
	return &Monitor{
		cfg:   cfg,
		src:   src,
		out:   out,
		sinks: sinks,
		log:   log,
		sleep: Sleep,
	}, nil
}

// State reports the current loop state.
func (m *Monitor) State() State { return m.state }

// Count is the number of rows emitted so far.
func (m *Monitor) Count() int { return m.count }

// PollOnce performs exactly one sample.
// All-or-nothing: any failed read aborts the sample.
func (m *Monitor) PollOnce() (gpsdo.Snapshot, error) {
	return m.src.ReadSnapshot()
}

// publish fans a snapshot out to every sink. Sink failures are logged, never returned.
func (m *Monitor) publish(ctx context.Context, s gpsdo.Snapshot) {
	for _, sk := range m.sinks {
		if err := sk.Publish(ctx, s); err != nil {
			m.log.Warn().Err(err).Int("dump", m.count).Msg("sink publish failed")
		}
	}
}

func (m *Monitor) fail(ctx context.Context, cause error) {
	for _, sk := range m.sinks {
		fs, ok := sk.(FailureSink)
		if !ok {
			continue
		}
		if err := fs.Fail(ctx, cause); err != nil {
			m.log.Warn().Err(err).Msg("sink failure report failed")
		}
	}
}

// Sleep waits for d or until ctx is done, whichever comes first.
// A non-positive d returns immediately with ctx.Err().
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
