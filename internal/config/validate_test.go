// internal/config/validate_test.go
package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// ---- tests ----

func TestValidate_EmptyConfigIsValid(t *testing.T) {
	if err := Validate(&Config{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"unknown bus kind":      func(c *Config) { c.Bus.Kind = "i2c" },
		"serial without addr":   func(c *Config) { c.Bus.Kind = BusSerial },
		"spi mode":              func(c *Config) { c.Bus.SPI.Mode = 4 },
		"parity":                func(c *Config) { c.Bus.Serial.Parity = "X" },
		"negative ppm":          func(c *Config) { c.Enable.PPM = -0.1 },
		"nan freq":              func(c *Config) { c.Enable.ClockFreqHz = math.NaN() },
		"negative count":        func(c *Config) { c.Monitor.Count = -1 },
		"negative banner":       func(c *Config) { c.Monitor.BannerInterval = -2 },
		"negative reset delay":  func(c *Config) { c.Reset.DelaySeconds = -1 },
		"log format":            func(c *Config) { c.Log.Format = "xml" },
		"mqtt without broker":   func(c *Config) { c.Sinks.MQTT.Enabled = true },
		"mqtt qos":              func(c *Config) { c.Sinks.MQTT = MQTTConfig{Enabled: true, Broker: "tcp://b:1883", QoS: 3} },
		"influx without bucket": func(c *Config) { c.Sinks.InfluxDB = InfluxDBConfig{Enabled: true, URL: "http://i", Org: "o"} },
		"modbus without ep":     func(c *Config) { c.Sinks.Modbus.Enabled = true },
	}

	for name, mutate := range cases {
		c := &Config{}
		mutate(c)
		if err := Validate(c); err == nil {
			t.Fatalf("%s: expected error, got nil", name)
		}
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	c := &Config{}
	_ = Validate(c)
	if c.Bus.Kind != "" || c.Monitor.BannerInterval != 0 {
		t.Fatalf("Validate mutated config: %+v", c)
	}
}

func TestNormalize_NegativeDumpCountMeansOnce(t *testing.T) {
	c := &Config{Dump: DumpConfig{Count: -1}}
	if err := Validate(c); err != nil {
		t.Fatalf("negative dump count must be accepted: %v", err)
	}
	Normalize(c)
	if c.Dump.Count != 1 {
		t.Fatalf("dump count got=%d want=1", c.Dump.Count)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	c := Default()

	if c.Bus.Kind != BusSPI || c.Bus.SPI.Device != "SPI1.1" || c.Bus.SPI.SpeedHz != 500000 || c.Bus.SPI.Mode != 0 {
		t.Fatalf("unexpected bus defaults: %+v", c.Bus)
	}
	if c.Enable.ClockFreqHz != 30.72e6 || c.Enable.PPM != 0.1 {
		t.Fatalf("unexpected enable defaults: %+v", c.Enable)
	}
	if c.Monitor.Count != 0 || c.Monitor.DelaySeconds != 1.0 || c.Monitor.BannerInterval != 10 {
		t.Fatalf("unexpected monitor defaults: %+v", c.Monitor)
	}
	if c.Dump.Count != 1 || c.Reset.DelaySeconds != 2.0 {
		t.Fatalf("unexpected dump/reset defaults: %+v %+v", c.Dump, c.Reset)
	}
	if err := Validate(c); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoad_YAMLAndTOML(t *testing.T) {
	dir := t.TempDir()

	yml := filepath.Join(dir, "gpsdoctl.yaml")
	if err := os.WriteFile(yml, []byte(`
bus:
  kind: serial
  serial:
    address: /dev/ttyUSB0
    baud: 921600
enable:
  clock_freq_hz: 10000000
monitor:
  banner_interval: 5
sinks:
  modbus:
    enabled: true
    endpoint: 127.0.0.1:502
    unit_id: 7
`), 0o600); err != nil {
		t.Fatal(err)
	}

	tml := filepath.Join(dir, "gpsdoctl.toml")
	if err := os.WriteFile(tml, []byte(`
[bus]
kind = "serial"
[bus.serial]
address = "/dev/ttyUSB0"
baud = 921600
[enable]
clock_freq_hz = 10000000.0
[monitor]
banner_interval = 5
[sinks.modbus]
enabled = true
endpoint = "127.0.0.1:502"
unit_id = 7
`), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{yml, tml} {
		c, err := Load(path)
		if err != nil {
			t.Fatalf("%s: load err=%v", path, err)
		}
		if err := Validate(c); err != nil {
			t.Fatalf("%s: validate err=%v", path, err)
		}
		Normalize(c)

		if c.Bus.Kind != BusSerial || c.Bus.Serial.Address != "/dev/ttyUSB0" || c.Bus.Serial.Baud != 921600 {
			t.Fatalf("%s: bus got=%+v", path, c.Bus)
		}
		if c.Bus.Serial.Parity != "N" || c.Bus.Serial.DataBits != 8 {
			t.Fatalf("%s: serial defaults not applied: %+v", path, c.Bus.Serial)
		}
		if c.Enable.ClockFreqHz != 10e6 || c.Enable.PPM != DefaultPPM {
			t.Fatalf("%s: enable got=%+v", path, c.Enable)
		}
		if c.Monitor.BannerInterval != 5 {
			t.Fatalf("%s: banner got=%d want=5", path, c.Monitor.BannerInterval)
		}
		if !c.Sinks.Modbus.Enabled || c.Sinks.Modbus.UnitID != 7 {
			t.Fatalf("%s: modbus sink got=%+v", path, c.Sinks.Modbus)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
