// internal/config/config.go
package config

type Config struct {
	Bus     BusConfig     `yaml:"bus" toml:"bus"`
	Enable  EnableConfig  `yaml:"enable" toml:"enable"`
	Monitor MonitorConfig `yaml:"monitor" toml:"monitor"`
	Dump    DumpConfig    `yaml:"dump" toml:"dump"`
	Reset   ResetConfig   `yaml:"reset" toml:"reset"`
	Log     LogConfig     `yaml:"log" toml:"log"`
	Sinks   SinksConfig   `yaml:"sinks" toml:"sinks"`
}

// ---- BUS ----

const (
	BusSPI    = "spi"
	BusSerial = "serial"
	BusSim    = "sim"
)

type BusConfig struct {
	Kind      string       `yaml:"kind" toml:"kind"` // spi | serial | sim
	TimeoutMs int          `yaml:"timeout_ms" toml:"timeout_ms"`
	SPI       SPIConfig    `yaml:"spi" toml:"spi"`
	Serial    SerialConfig `yaml:"serial" toml:"serial"`
}

type SPIConfig struct {
	Device  string `yaml:"device" toml:"device"` // periph port name, e.g. SPI1.1
	SpeedHz int64  `yaml:"speed_hz" toml:"speed_hz"`
	Mode    int    `yaml:"mode" toml:"mode"`
}

type SerialConfig struct {
	Address  string `yaml:"address" toml:"address"`
	Baud     int    `yaml:"baud" toml:"baud"`
	DataBits int    `yaml:"data_bits" toml:"data_bits"`
	StopBits int    `yaml:"stop_bits" toml:"stop_bits"`
	Parity   string `yaml:"parity" toml:"parity"` // N | E | O
}

// ---- COMMANDS ----

type EnableConfig struct {
	ClockFreqHz float64 `yaml:"clock_freq_hz" toml:"clock_freq_hz"`
	PPM         float64 `yaml:"ppm" toml:"ppm"`
}

type MonitorConfig struct {
	Count          int     `yaml:"count" toml:"count"` // 0 = until cancelled
	DelaySeconds   float64 `yaml:"delay_s" toml:"delay_s"`
	BannerInterval int     `yaml:"banner_interval" toml:"banner_interval"`
}

type DumpConfig struct {
	Count        int     `yaml:"count" toml:"count"`
	DelaySeconds float64 `yaml:"delay_s" toml:"delay_s"`
}

type ResetConfig struct {
	DelaySeconds float64 `yaml:"delay_s" toml:"delay_s"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // console | json
}

// ---- SINKS (all opt-in) ----

type SinksConfig struct {
	MQTT     MQTTConfig     `yaml:"mqtt" toml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb" toml:"influxdb"`
	Modbus   ModbusConfig   `yaml:"modbus" toml:"modbus"`
}

type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	Broker      string `yaml:"broker" toml:"broker"` // tcp://host:1883
	ClientID    string `yaml:"client_id" toml:"client_id"`
	Username    string `yaml:"username" toml:"username"`
	Password    string `yaml:"password" toml:"password"`
	TopicPrefix string `yaml:"topic_prefix" toml:"topic_prefix"`
	QoS         int    `yaml:"qos" toml:"qos"`
	Retained    bool   `yaml:"retained" toml:"retained"`
}

type InfluxDBConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	URL     string `yaml:"url" toml:"url"`
	Token   string `yaml:"token" toml:"token"`
	Org     string `yaml:"org" toml:"org"`
	Bucket  string `yaml:"bucket" toml:"bucket"`
	Device  string `yaml:"device" toml:"device"` // tag value
}

type ModbusConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	Endpoint    string `yaml:"endpoint" toml:"endpoint"` // host:502
	UnitID      uint8  `yaml:"unit_id" toml:"unit_id"`
	BaseAddress uint16 `yaml:"base_address" toml:"base_address"`
	TimeoutMs   int    `yaml:"timeout_ms" toml:"timeout_ms"`
}
