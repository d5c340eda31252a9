// internal/sink/influx/influx.go
package influx

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/tamzrod/gpsdoctl/internal/config"
	"github.com/tamzrod/gpsdoctl/internal/gpsdo"
	"github.com/tamzrod/gpsdoctl/internal/regmap"
)

// Measurement is the point name every snapshot is written under.
const Measurement = "gpsdo"

const pingTimeout = 5 * time.Second

// pointWriter is the slice of api.WriteAPIBlocking the sink needs.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Sink writes one point per snapshot with the blocking write API,
// so a failed write is reported on the sample that caused it.
type Sink struct {
	w      pointWriter
	device string
	log    zerolog.Logger

	close func()
}

// Connect creates the client and checks the server answers a ping.
func Connect(cfg config.InfluxDBConfig, log zerolog.Logger) (*Sink, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb: ping %s: %w", cfg.URL, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("influxdb: %s not healthy", cfg.URL)
	}

	s := newSink(client.WriteAPIBlocking(cfg.Org, cfg.Bucket), cfg.Device, log)
	s.close = client.Close
	return s, nil
}

func newSink(w pointWriter, device string, log zerolog.Logger) *Sink {
	return &Sink{w: w, device: device, log: log}
}

// Publish implements monitor.Sink.
func (s *Sink) Publish(ctx context.Context, snap gpsdo.Snapshot) error {
	if err := s.w.WritePoint(ctx, Point(s.device, snap)); err != nil {
		return fmt.Errorf("influxdb: write: %w", err)
	}
	return nil
}

// Close releases the HTTP client.
func (s *Sink) Close() error {
	if s.close != nil {
		s.close()
		s.close = nil
	}
	return nil
}

// Point builds the line-protocol point for one snapshot.
func Point(device string, s gpsdo.Snapshot) *write.Point {
	return influxdb2.NewPoint(Measurement, Tags(device), Fields(s), s.Finished)
}

// Tags are the point tags.
func Tags(device string) map[string]string {
	return map[string]string{"device": device}
}

// Fields are the point fields. Enumerations are stored raw; names live in the tool.
func Fields(s gpsdo.Snapshot) map[string]interface{} {
	f := map[string]interface{}{
		"enabled":  s.Enabled,
		"dac":      int64(s.DAC),
		"state":    int64(s.Status.State),
		"accuracy": int64(s.Status.Accuracy),
		"tpulse":   s.Status.TPulseActive,
		"span_us":  s.Span().Microseconds(),
	}
	for i, e := range s.Errors() {
		f["err_"+regmap.Windows[i].Name] = int64(e)
	}
	return f
}
