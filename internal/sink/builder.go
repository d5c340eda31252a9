// internal/sink/builder.go
package sink

import (
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/gpsdoctl/internal/config"
	"github.com/tamzrod/gpsdoctl/internal/monitor"
	sinfluxdb "github.com/tamzrod/gpsdoctl/internal/sink/influx"
	smodbus "github.com/tamzrod/gpsdoctl/internal/sink/modbus"
	smqtt "github.com/tamzrod/gpsdoctl/internal/sink/mqtt"
)

// Build opens every enabled sink.
// On any failure the sinks opened so far are closed again and the error is returned.
// The returned closer closes all sinks and reports the last error.
func Build(c cfg.SinksConfig, log zerolog.Logger) ([]monitor.Sink, func() error, error) {
	var (
		sinks   []monitor.Sink
		closers []func() error
	)

	closeAll := func() error {
		var last error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				last = err
			}
		}
		return last
	}

	if c.Modbus.Enabled {
		m, err := smodbus.Open(smodbus.ClientConfig{
			Endpoint: c.Modbus.Endpoint,
			UnitID:   c.Modbus.UnitID,
			Timeout:  time.Duration(c.Modbus.TimeoutMs) * time.Millisecond,
		}, c.Modbus.BaseAddress, log.With().Str("sink", "modbus").Logger())
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, m)
		closers = append(closers, m.Close)
	}

	if c.MQTT.Enabled {
		s, err := smqtt.Connect(c.MQTT, log.With().Str("sink", "mqtt").Logger())
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, s)
		closers = append(closers, s.Close)
	}

	if c.InfluxDB.Enabled {
		s, err := sinfluxdb.Connect(c.InfluxDB, log.With().Str("sink", "influxdb").Logger())
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, s)
		closers = append(closers, s.Close)
	}

	for _, s := range sinks {
		log.Debug().Str("sink", sinkName(s)).Msg("sink enabled")
	}

	return sinks, closeAll, nil
}

func sinkName(s monitor.Sink) string {
	switch s.(type) {
	case *smodbus.Mirror:
		return "modbus"
	case *smqtt.Sink:
		return "mqtt"
	case *sinfluxdb.Sink:
		return "influxdb"
	default:
		return "unknown"
	}
}
