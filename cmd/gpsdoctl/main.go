// cmd/gpsdoctl/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tamzrod/gpsdoctl/internal/command"
	"github.com/tamzrod/gpsdoctl/internal/config"
	"github.com/tamzrod/gpsdoctl/internal/gpsdo"
	"github.com/tamzrod/gpsdoctl/internal/logging"
	"github.com/tamzrod/gpsdoctl/internal/monitor"
	"github.com/tamzrod/gpsdoctl/internal/planner"
	"github.com/tamzrod/gpsdoctl/internal/sink"
)

// errUsage means the command line was rejected; usage has been printed.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "gpsdoctl: %v\n", err)
		os.Exit(1)
	}
}

// options holds the parsed command line.
type options struct {
	configPath string

	dump, enable, disable, reset, check bool

	num        int
	delay      float64
	banner     int
	resetDelay float64
	clkFreqMHz float64
	ppm        float64

	bus      string
	device   string
	logLevel string

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: map[string]bool{}}

	fs := flag.NewFlagSet("gpsdoctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configPath, "config", "", "config file (.yaml or .toml)")

	fs.BoolVar(&o.dump, "dump", false, "dump registers")
	fs.BoolVar(&o.enable, "enable", false, "configure and enable GPSDO")
	fs.BoolVar(&o.disable, "disable", false, "disable GPSDO")
	fs.BoolVar(&o.reset, "reset", false, "reset GPSDO (disable, wait, enable)")
	fs.BoolVar(&o.check, "check", false, "run monitoring mode")

	fs.IntVar(&o.num, "num", 0, "iterations (check: 0 = until Ctrl+C; dump: 0 = once)")
	fs.Float64Var(&o.delay, "delay", config.DefaultDelaySeconds, "delay between iterations in seconds (check, dump)")
	fs.IntVar(&o.banner, "banner", config.DefaultBannerInterval, "header repeat interval (check)")
	fs.Float64Var(&o.resetDelay, "reset-delay", config.DefaultResetSeconds, "delay after disable before re-enable in seconds")
	fs.Float64Var(&o.clkFreqMHz, "clk-freq", config.DefaultClockFreqHz/1e6, "reference clock in MHz (10 or 30.72)")
	fs.Float64Var(&o.ppm, "ppm", config.DefaultPPM, "tolerance in ppm")

	fs.StringVar(&o.bus, "bus", "", "bus kind: spi, serial or sim (overrides config)")
	fs.StringVar(&o.device, "device", "", "spi port name or serial device (overrides config)")
	fs.StringVar(&o.logLevel, "log-level", "", "log level (overrides config)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, errUsage
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	if !(o.dump || o.enable || o.disable || o.reset || o.check) {
		fmt.Fprintln(stderr, "gpsdoctl: no command given (want -dump, -enable, -disable, -reset or -check)")
		fs.Usage()
		return nil, errUsage
	}
	return o, nil
}

// loadConfig reads the config file if any, applies defaults, then lets
// explicitly given flags win. Flags apply after defaults so that an explicit
// zero (e.g. -delay 0) is kept.
func loadConfig(o *options) (*config.Config, error) {
	c := &config.Config{}
	if o.configPath != "" {
		var err error
		if c, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(c); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(c)

	if o.bus != "" {
		c.Bus.Kind = o.bus
	}
	if o.device != "" {
		c.Bus.SPI.Device = o.device
		c.Bus.Serial.Address = o.device
	}
	if o.logLevel != "" {
		c.Log.Level = o.logLevel
	}
	// -num and -delay are shared; a command only takes them when selected.
	if o.set["num"] {
		if o.check {
			c.Monitor.Count = o.num
		}
		if o.dump {
			c.Dump.Count = o.num
		}
	}
	if o.set["delay"] {
		if o.check {
			c.Monitor.DelaySeconds = o.delay
		}
		if o.dump {
			c.Dump.DelaySeconds = o.delay
		}
	}
	if o.set["banner"] {
		c.Monitor.BannerInterval = o.banner
	}
	if o.set["reset-delay"] {
		c.Reset.DelaySeconds = o.resetDelay
	}
	if o.set["clk-freq"] {
		c.Enable.ClockFreqHz = o.clkFreqMHz * 1e6
	}
	if o.set["ppm"] {
		c.Enable.PPM = o.ppm
	}

	if err := config.Validate(c); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return c, nil
}

// preflight rejects a command list that would fail part way through.
// It must run before the bus is opened.
func preflight(o *options, c *config.Config) error {
	if o.enable {
		if _, err := planner.Compute(c.Enable.ClockFreqHz, c.Enable.PPM); err != nil {
			return fmt.Errorf("enable: %w", err)
		}
	}
	if o.check && c.Monitor.BannerInterval <= 0 {
		return fmt.Errorf("check: banner interval must be > 0, got %d", c.Monitor.BannerInterval)
	}
	return nil
}

// commands turns the selected flags into the command list.
// Order here does not matter; the dispatcher sorts.
func commands(o *options, c *config.Config) []command.Command {
	var cmds []command.Command
	if o.dump {
		cmds = append(cmds, command.Dump{Count: c.Dump.Count, Delay: seconds(c.Dump.DelaySeconds)})
	}
	if o.enable {
		cmds = append(cmds, command.Enable{FrequencyHz: c.Enable.ClockFreqHz, PPM: c.Enable.PPM})
	}
	if o.disable {
		cmds = append(cmds, command.Disable{})
	}
	if o.reset {
		cmds = append(cmds, command.Reset{Delay: seconds(c.Reset.DelaySeconds)})
	}
	if o.check {
		cmds = append(cmds, command.Check{
			Count:          c.Monitor.Count,
			Delay:          seconds(c.Monitor.DelaySeconds),
			BannerInterval: c.Monitor.BannerInterval,
		})
	}
	return cmds
}

// run never exits the process: every resource it acquires is released by its
// deferred closers before the error reaches main.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	c, err := loadConfig(o)
	if err != nil {
		return err
	}

	if err := preflight(o, c); err != nil {
		return err
	}

	logger := logging.New(c.Log, stderr)

	// --------------------
	// Bus (acquired once, released on every path)
	// --------------------

	client, closeBus, err := gpsdo.Build(c.Bus, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBus(); err != nil {
			logger.Warn().Err(err).Msg("bus close failed")
		}
	}()

	// --------------------
	// Sinks (check only)
	// --------------------

	var sinks []monitor.Sink
	if o.check {
		s, closeSinks, err := sink.Build(c.Sinks, logger)
		if err != nil {
			return fmt.Errorf("sinks: %w", err)
		}
		defer func() {
			if err := closeSinks(); err != nil {
				logger.Warn().Err(err).Msg("sink close failed")
			}
		}()
		sinks = s
	}

	d := command.NewDispatcher(client, stdout, logger, sinks...)
	return d.Run(ctx, commands(o, c))
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
