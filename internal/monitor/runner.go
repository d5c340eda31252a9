// internal/monitor/runner.go
package monitor

import (
	"context"
	"fmt"
)

// Run drives the loop until NumDumps rows were emitted or ctx is cancelled.
// Both are normal termination and return nil; only a failed sample returns an error.
//
// Cancellation is observed between iterations (before a sample and during the
// inter-sample delay), never in the middle of a snapshot read.
func (m *Monitor) Run(ctx context.Context) error {
	m.state = Running
	defer func() { m.state = Stopped }()

	fmt.Fprintln(m.out, IntroLine)
	fmt.Fprintln(m.out, HeaderLine)

	for {
		if ctx.Err() != nil {
			return m.cancelled()
		}

		snap, err := m.PollOnce()
		if err != nil {
			m.fail(context.WithoutCancel(ctx), err)
			return fmt.Errorf("monitor: dump %d: %w", m.count+1, err)
		}

		m.count++
		fmt.Fprintln(m.out, FormatLine(m.count, snap))
		m.publish(ctx, snap)

		if m.count%m.cfg.BannerInterval == 0 {
			fmt.Fprintln(m.out, HeaderLine)
		}

		if m.cfg.NumDumps > 0 && m.count == m.cfg.NumDumps {
			m.log.Debug().Int("dumps", m.count).Msg("monitor done")
			return nil
		}

		if err := m.sleep(ctx, m.cfg.Delay); err != nil {
			return m.cancelled()
		}
	}
}

func (m *Monitor) cancelled() error {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, StoppedLine)
	m.log.Debug().Int("dumps", m.count).Msg("monitor cancelled")
	return nil
}
