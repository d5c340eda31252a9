// internal/monitor/types.go
package monitor

import (
	"context"

	"github.com/tamzrod/gpsdoctl/internal/gpsdo"
)

// Source produces one Snapshot per call. *gpsdo.Client implements it.
type Source interface {
	ReadSnapshot() (gpsdo.Snapshot, error)
}

// Sink receives every snapshot after its row is printed.
// Delivery only: a sink must not feed anything back into the loop.
type Sink interface {
	Publish(ctx context.Context, s gpsdo.Snapshot) error
}

// FailureSink is an optional Sink extension told about a failed sample
// before the loop returns the error.
type FailureSink interface {
	Sink
	Fail(ctx context.Context, err error) error
}

// State of the loop.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}
