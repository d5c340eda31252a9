// internal/config/normalize.go
package config

// Defaults.
const (
	DefaultSPIDevice      = "SPI1.1"
	DefaultSPISpeedHz     = 500000
	DefaultSerialBaud     = 115200
	DefaultBusTimeoutMs   = 1000
	DefaultClockFreqHz    = 30.72e6
	DefaultPPM            = 0.1
	DefaultDelaySeconds   = 1.0
	DefaultBannerInterval = 10
	DefaultResetSeconds   = 2.0
	DefaultTopicPrefix    = "gpsdo"
	DefaultModbusTimeout  = 2000
)

// Normalize applies defaults to unset fields.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// BUS
	// ------------------------------------------------------------

	b := &cfg.Bus
	if b.Kind == "" {
		b.Kind = BusSPI
	}
	if b.TimeoutMs == 0 {
		b.TimeoutMs = DefaultBusTimeoutMs
	}
	if b.SPI.Device == "" {
		b.SPI.Device = DefaultSPIDevice
	}
	if b.SPI.SpeedHz == 0 {
		b.SPI.SpeedHz = DefaultSPISpeedHz
	}
	if b.Serial.Baud == 0 {
		b.Serial.Baud = DefaultSerialBaud
	}
	if b.Serial.DataBits == 0 {
		b.Serial.DataBits = 8
	}
	if b.Serial.StopBits == 0 {
		b.Serial.StopBits = 1
	}
	if b.Serial.Parity == "" {
		b.Serial.Parity = "N"
	}

	// ------------------------------------------------------------
	// COMMANDS
	// ------------------------------------------------------------

	if cfg.Enable.ClockFreqHz == 0 {
		cfg.Enable.ClockFreqHz = DefaultClockFreqHz
	}
	if cfg.Enable.PPM == 0 {
		cfg.Enable.PPM = DefaultPPM
	}

	// monitor.count == 0 is meaningful (unbounded) and left alone.
	if cfg.Monitor.DelaySeconds == 0 {
		cfg.Monitor.DelaySeconds = DefaultDelaySeconds
	}
	if cfg.Monitor.BannerInterval == 0 {
		cfg.Monitor.BannerInterval = DefaultBannerInterval
	}

	if cfg.Dump.Count <= 0 {
		cfg.Dump.Count = 1
	}
	if cfg.Dump.DelaySeconds == 0 {
		cfg.Dump.DelaySeconds = DefaultDelaySeconds
	}

	if cfg.Reset.DelaySeconds == 0 {
		cfg.Reset.DelaySeconds = DefaultResetSeconds
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}

	// ------------------------------------------------------------
	// SINKS
	// ------------------------------------------------------------

	if cfg.Sinks.MQTT.ClientID == "" {
		cfg.Sinks.MQTT.ClientID = "gpsdoctl"
	}
	if cfg.Sinks.MQTT.TopicPrefix == "" {
		cfg.Sinks.MQTT.TopicPrefix = DefaultTopicPrefix
	}
	if cfg.Sinks.InfluxDB.Device == "" {
		cfg.Sinks.InfluxDB.Device = "gpsdo"
	}
	if cfg.Sinks.Modbus.TimeoutMs == 0 {
		cfg.Sinks.Modbus.TimeoutMs = DefaultModbusTimeout
	}
}
