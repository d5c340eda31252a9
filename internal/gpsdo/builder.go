// internal/gpsdo/builder.go
package gpsdo

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/gpsdoctl/internal/config"
	"github.com/tamzrod/gpsdoctl/internal/regmap"
	"github.com/tamzrod/gpsdoctl/internal/transport"
	"github.com/tamzrod/gpsdoctl/internal/transport/sim"
	"github.com/tamzrod/gpsdoctl/internal/transport/spidev"
	"github.com/tamzrod/gpsdoctl/internal/transport/uart"
)

// Build opens the bus described by b and wires a Client on top of it.
// The bus is acquired exactly once here; the returned closer releases it and
// is safe to call more than once.
// No retries: an open failure is returned as a TransportError.
func Build(b cfg.BusConfig, log zerolog.Logger) (*Client, func() error, error) {
	conn, err := openConn(b)
	if err != nil {
		return nil, nil, &transport.TransportError{Op: "open", Err: err}
	}

	busLog := log.With().Str("component", "bus").Str("kind", b.Kind).Logger()
	tr := transport.New(conn, busLog)
	busLog.Debug().Msg("bus opened")

	return New(tr, log.With().Str("component", "gpsdo").Logger()), tr.Close, nil
}

func openConn(b cfg.BusConfig) (transport.Conn, error) {
	switch b.Kind {
	case cfg.BusSPI, "":
		return spidev.Open(spidev.Config{
			Device:  b.SPI.Device,
			SpeedHz: b.SPI.SpeedHz,
			Mode:    b.SPI.Mode,
		})

	case cfg.BusSerial:
		return uart.Open(uart.Config{
			Address:  b.Serial.Address,
			BaudRate: b.Serial.Baud,
			DataBits: b.Serial.DataBits,
			StopBits: b.Serial.StopBits,
			Parity:   b.Serial.Parity,
			Timeout:  time.Duration(b.TimeoutMs) * time.Millisecond,
		})

	case cfg.BusSim:
		d := sim.New()
		// mid-scale DAC, as after core reset
		d.Poke(regmap.DACTunedVal, 0x8000)
		return d, nil

	default:
		return nil, fmt.Errorf("unknown bus kind %q", b.Kind)
	}
}
