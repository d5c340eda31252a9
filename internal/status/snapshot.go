// internal/status/snapshot.go
package status

import "github.com/tamzrod/gpsdoctl/internal/gpsdo"

// Block represents exactly what the mirror is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Block struct {
	Health   uint16
	Enabled  bool
	State    uint8
	Accuracy uint8
	TPulse   bool
	DAC      uint16
	Err1s    int32
	Err10s   int32
	Err100s  int32
	Sequence uint16
}

// FromSnapshot copies a monitor sample into a healthy block.
func FromSnapshot(s gpsdo.Snapshot, seq uint16) Block {
	return Block{
		Health:   HealthOK,
		Enabled:  s.Enabled,
		State:    uint8(s.Status.State),
		Accuracy: uint8(s.Status.Accuracy),
		TPulse:   s.Status.TPulseActive,
		DAC:      s.DAC,
		Err1s:    s.Err1s,
		Err10s:   s.Err10s,
		Err100s:  s.Err100s,
		Sequence: seq,
	}
}
