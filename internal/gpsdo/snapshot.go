// internal/gpsdo/snapshot.go
package gpsdo

import "time"

// Snapshot is one monitor sample of the regulation core.
//
// It is NOT an atomic observation. It is assembled from nine sequential
// register reads while the core keeps updating STATUS, ERR and DAC on its own
// schedule, so fields may come from different update cycles, and the low and
// high halves of an error value may be torn. Started and Finished bound the
// interval over which the reads happened.
type Snapshot struct {
	Enabled bool

	Err1s   int32
	Err10s  int32
	Err100s int32

	DAC    uint16
	Status Status

	Started  time.Time
	Finished time.Time
}

// Errors returns the 1s, 10s and 100s errors in window order.
func (s Snapshot) Errors() [3]int32 {
	return [3]int32{s.Err1s, s.Err10s, s.Err100s}
}

// Span is how long the non-atomic read sequence took.
func (s Snapshot) Span() time.Duration {
	return s.Finished.Sub(s.Started)
}
