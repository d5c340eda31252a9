// internal/command/dispatcher.go
package command

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/gpsdoctl/internal/gpsdo"
	"github.com/tamzrod/gpsdoctl/internal/monitor"
	"github.com/tamzrod/gpsdoctl/internal/planner"
	"github.com/tamzrod/gpsdoctl/internal/regmap"
)

// Device is everything the commands need from the core. *gpsdo.Client implements it.
type Device interface {
	planner.Target
	monitor.Source
	Dump() ([]gpsdo.RegisterValue, error)
	SetEnabled(on bool) error
}

// Dispatcher executes an ordered command list against one device.
// Console output goes to out; diagnostics go to the logger.
type Dispatcher struct {
	dev   Device
	out   io.Writer
	log   zerolog.Logger
	sinks []monitor.Sink

	sleep func(ctx context.Context, d time.Duration) error
}

// NewDispatcher wires a dispatcher. Sinks are handed to the check command only.
func NewDispatcher(dev Device, out io.Writer, log zerolog.Logger, sinks ...monitor.Sink) *Dispatcher {
	return &Dispatcher{
		dev:   dev,
		out:   out,
		log:   log,
		sinks: sinks,
		sleep: monitor.Sleep,
	}
}

// Run executes cmds in fixed kind order (dump, enable, disable, reset, check).
// The first failing command aborts the rest and its error is returned.
// Cancellation stops the sequence between commands and is not an error.
func (d *Dispatcher) Run(ctx context.Context, cmds []Command) error {
	for _, c := range Sort(cmds) {
		if ctx.Err() != nil {
			d.log.Info().Str("next", c.Kind().String()).Msg("cancelled, skipping remaining commands")
			return nil
		}

		d.log.Debug().Str("cmd", c.Kind().String()).Msg("run")

		if err := d.exec(ctx, c); err != nil {
			return fmt.Errorf("%s: %w", c.Kind(), err)
		}
	}
	return nil
}

func (d *Dispatcher) exec(ctx context.Context, c Command) error {
	switch c := c.(type) {
	case Dump:
		return d.dump(ctx, c)
	case Enable:
		return d.enable(c)
	case Disable:
		return d.disable()
	case Reset:
		return d.reset(ctx, c)
	case Check:
		return d.check(ctx, c)
	default:
		return fmt.Errorf("unsupported command %T", c)
	}
}

// ------------------------------------------------------------
// dump
// ------------------------------------------------------------

func (d *Dispatcher) dump(ctx context.Context, c Dump) error {
	n := c.Count
	if n <= 0 {
		n = 1
	}
	width := regmap.MaxNameLen()

	fmt.Fprintln(d.out, "Dumping gpsdocfg registers:")
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := d.sleep(ctx, c.Delay); err != nil {
				return nil
			}
			fmt.Fprintf(d.out, "\nDump %d:\n", i+1)
		}

		regs, err := d.dev.Dump()
		if err != nil {
			return err
		}
		for _, rv := range regs {
			fmt.Fprintf(d.out, "0x%04X (%-*s): 0x%04X\n", uint16(rv.Register.Addr), width, rv.Register.Name, rv.Value)
		}
	}
	return nil
}

// ------------------------------------------------------------
// enable / disable / reset
// ------------------------------------------------------------

func (d *Dispatcher) enable(c Enable) error {
	p, err := planner.Compute(c.FrequencyHz, c.PPM)
	if err != nil {
		return err
	}
	if err := planner.Apply(d.dev, p); err != nil {
		return err
	}

	d.log.Info().
		Float64("freq_hz", p.FrequencyHz).
		Float64("ppm", p.PPM).
		Uint16("clk_sel", p.ClkSel).
		Msg("plan applied")

	fmt.Fprintf(d.out, "GPSDO enabled: CLK_SEL=%d (%sMHz), %sppm tolerance (1s tol=%dHz, 10s=%dHz, 100s=%dHz).\n",
		p.ClkSel,
		formatFloat(p.MHz()),
		formatFloat(p.PPM),
		p.Tolerances[0], p.Tolerances[1], p.Tolerances[2],
	)
	return nil
}

func (d *Dispatcher) disable() error {
	if err := d.dev.SetEnabled(false); err != nil {
		return err
	}
	fmt.Fprintln(d.out, "GPSDO disabled.")
	return nil
}

// reset always waits the full delay: a cancelled run must not re-enable early.
func (d *Dispatcher) reset(ctx context.Context, c Reset) error {
	fmt.Fprintln(d.out, "Resetting GPSDO...")
	if err := d.dev.SetEnabled(false); err != nil {
		return err
	}
	_ = d.sleep(context.WithoutCancel(ctx), c.Delay)
	if err := d.dev.SetEnabled(true); err != nil {
		return err
	}
	fmt.Fprintln(d.out, "GPSDO reset complete (re-enabled).")
	return nil
}

// ------------------------------------------------------------
// check
// ------------------------------------------------------------

func (d *Dispatcher) check(ctx context.Context, c Check) error {
	m, err := monitor.New(monitor.Config{
		NumDumps:       c.Count,
		Delay:          c.Delay,
		BannerInterval: c.BannerInterval,
	}, d.dev, d.out, d.log.With().Str("component", "monitor").Logger(), d.sinks...)
	if err != nil {
		return err
	}
	return m.Run(ctx)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
