// internal/sink/mqtt/mqtt.go
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/tamzrod/gpsdoctl/internal/config"
	"github.com/tamzrod/gpsdoctl/internal/gpsdo"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250 // milliseconds
)

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt: publish timeout")

// publisher is the slice of pahomqtt.Client the sink needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// Sink publishes every snapshot as JSON to <prefix>/snapshot.
type Sink struct {
	pub      publisher
	topic    string
	qos      byte
	retained bool
	log      zerolog.Logger

	disconnect func()
}

// Connect dials the broker once; paho reconnects on its own afterwards.
func Connect(cfg config.MQTTConfig, log zerolog.Logger) (*Sink, error) {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
	})

	c := pahomqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt: connect %s: timeout after %v", cfg.Broker, connectTimeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.Broker, err)
	}

	s := newSink(c, cfg, log)
	s.disconnect = func() { c.Disconnect(disconnectQuiesce) }
	return s, nil
}

func newSink(pub publisher, cfg config.MQTTConfig, log zerolog.Logger) *Sink {
	return &Sink{
		pub:      pub,
		topic:    Topic(cfg.TopicPrefix),
		qos:      byte(cfg.QoS),
		retained: cfg.Retained,
		log:      log,
	}
}

// Topic is the snapshot topic under prefix.
func Topic(prefix string) string {
	return strings.TrimSuffix(prefix, "/") + "/snapshot"
}

// Publish implements monitor.Sink.
func (s *Sink) Publish(ctx context.Context, snap gpsdo.Snapshot) error {
	payload, err := Payload(snap)
	if err != nil {
		return err
	}

	tok := s.pub.Publish(s.topic, s.qos, s.retained, payload)

	t := time.NewTimer(publishTimeout)
	defer t.Stop()

	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return ErrPublishTimeout
	}
}

// Close disconnects from the broker.
func (s *Sink) Close() error {
	if s.disconnect != nil {
		s.disconnect()
		s.disconnect = nil
	}
	return nil
}

// ---- payload ----

type payload struct {
	Enabled      bool   `json:"enabled"`
	Err1s        int32  `json:"err_1s"`
	Err10s       int32  `json:"err_10s"`
	Err100s      int32  `json:"err_100s"`
	DAC          uint16 `json:"dac"`
	State        string `json:"state"`
	StateRaw     uint8  `json:"state_raw"`
	Accuracy     string `json:"accuracy"`
	AccuracyRaw  uint8  `json:"accuracy_raw"`
	TPulseActive bool   `json:"tpulse_active"`
	Timestamp    string `json:"timestamp"`
	SpanMicros   int64  `json:"span_us"`
}

// Payload renders the JSON message for one snapshot.
func Payload(s gpsdo.Snapshot) ([]byte, error) {
	return json.Marshal(payload{
		Enabled:      s.Enabled,
		Err1s:        s.Err1s,
		Err10s:       s.Err10s,
		Err100s:      s.Err100s,
		DAC:          s.DAC,
		State:        s.Status.State.String(),
		StateRaw:     uint8(s.Status.State),
		Accuracy:     s.Status.Accuracy.String(),
		AccuracyRaw:  uint8(s.Status.Accuracy),
		TPulseActive: s.Status.TPulseActive,
		Timestamp:    s.Finished.UTC().Format(time.RFC3339Nano),
		SpanMicros:   s.Span().Microseconds(),
	})
}
