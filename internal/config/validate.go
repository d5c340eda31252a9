// internal/config/validate.go
package config

import (
	"fmt"
	"math"
)

// Validate checks configuration correctness.
// It performs declarative validation only; zero values mean "use default".
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// BUS
	// ------------------------------------------------------------

	b := cfg.Bus
	switch b.Kind {
	case "", BusSPI, BusSim:
	case BusSerial:
		if b.Serial.Address == "" {
			return fmt.Errorf("bus: kind %q requires serial.address", b.Kind)
		}
	default:
		return fmt.Errorf("bus: unknown kind %q (want spi, serial or sim)", b.Kind)
	}
	if b.TimeoutMs < 0 {
		return fmt.Errorf("bus: timeout_ms must be >= 0, got %d", b.TimeoutMs)
	}
	if b.SPI.Mode < 0 || b.SPI.Mode > 3 {
		return fmt.Errorf("bus: spi.mode must be 0..3, got %d", b.SPI.Mode)
	}
	if b.SPI.SpeedHz < 0 {
		return fmt.Errorf("bus: spi.speed_hz must be >= 0, got %d", b.SPI.SpeedHz)
	}
	switch b.Serial.Parity {
	case "", "N", "E", "O":
	default:
		return fmt.Errorf("bus: serial.parity must be N, E or O, got %q", b.Serial.Parity)
	}

	// ------------------------------------------------------------
	// COMMANDS
	// ------------------------------------------------------------

	if err := nonNegative("enable.clock_freq_hz", cfg.Enable.ClockFreqHz); err != nil {
		return err
	}
	if err := nonNegative("enable.ppm", cfg.Enable.PPM); err != nil {
		return err
	}
	if cfg.Monitor.Count < 0 {
		return fmt.Errorf("monitor: count must be >= 0, got %d", cfg.Monitor.Count)
	}
	if cfg.Monitor.BannerInterval < 0 {
		return fmt.Errorf("monitor: banner_interval must be > 0, got %d", cfg.Monitor.BannerInterval)
	}
	if err := nonNegative("monitor.delay_s", cfg.Monitor.DelaySeconds); err != nil {
		return err
	}
	if err := nonNegative("dump.delay_s", cfg.Dump.DelaySeconds); err != nil {
		return err
	}
	if err := nonNegative("reset.delay_s", cfg.Reset.DelaySeconds); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch cfg.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log: format must be console or json, got %q", cfg.Log.Format)
	}

	// ------------------------------------------------------------
	// SINKS (OPT-IN)
	// ------------------------------------------------------------

	if m := cfg.Sinks.MQTT; m.Enabled {
		if m.Broker == "" {
			return fmt.Errorf("sinks.mqtt: broker required when enabled")
		}
		if m.QoS < 0 || m.QoS > 2 {
			return fmt.Errorf("sinks.mqtt: qos must be 0..2, got %d", m.QoS)
		}
	}
	if i := cfg.Sinks.InfluxDB; i.Enabled {
		if i.URL == "" || i.Org == "" || i.Bucket == "" {
			return fmt.Errorf("sinks.influxdb: url, org and bucket required when enabled")
		}
	}
	if m := cfg.Sinks.Modbus; m.Enabled {
		if m.Endpoint == "" {
			return fmt.Errorf("sinks.modbus: endpoint required when enabled")
		}
		if m.TimeoutMs < 0 {
			return fmt.Errorf("sinks.modbus: timeout_ms must be >= 0, got %d", m.TimeoutMs)
		}
	}

	return nil
}

func nonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must be a finite value >= 0, got %v", name, v)
	}
	return nil
}
