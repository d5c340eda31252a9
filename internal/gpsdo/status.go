// internal/gpsdo/status.go
package gpsdo

import (
	"fmt"

	"github.com/tamzrod/gpsdoctl/internal/regmap"
)

// State is the STATUS.STATE field. Codes other than the known ones are kept
// verbatim and report Known() == false.
type State uint8

const (
	StateCoarseTune State = 0
	StateFineTune   State = 1
)

// Known reports whether s is a documented state.
func (s State) Known() bool {
	return s == StateCoarseTune || s == StateFineTune
}

func (s State) String() string {
	switch s {
	case StateCoarseTune:
		return "Coarse Tune"
	case StateFineTune:
		return "Fine Tune"
	default:
		return fmt.Sprintf("Unknown (%d)", uint8(s))
	}
}

// Accuracy is the STATUS.ACCURACY field.
type Accuracy uint8

const (
	AccuracyLowest  Accuracy = 0 // disabled or lowest
	Accuracy1s      Accuracy = 1
	Accuracy2s      Accuracy = 2
	AccuracyHighest Accuracy = 3
)

var accuracyNames = [...]string{
	AccuracyLowest:  "Disabled/Lowest",
	Accuracy1s:      "1s Tune",
	Accuracy2s:      "2s Tune",
	AccuracyHighest: "3s Tune (Highest)",
}

// Known reports whether a is a documented accuracy level.
func (a Accuracy) Known() bool {
	return int(a) < len(accuracyNames)
}

func (a Accuracy) String() string {
	if a.Known() {
		return accuracyNames[a]
	}
	return fmt.Sprintf("Unknown (%d)", uint8(a))
}

// Status is the decoded STATUS register.
type Status struct {
	State        State
	Accuracy     Accuracy
	TPulseActive bool
	Raw          uint16
}

// DecodeStatus splits a raw STATUS value into its fields. It never fails:
// out-of-range codes surface as unknown State/Accuracy values.
func DecodeStatus(raw uint16) Status {
	return Status{
		State:        State(regmap.StatusState.Get(raw)),
		Accuracy:     Accuracy(regmap.StatusAccuracy.Get(raw)),
		TPulseActive: regmap.StatusTPulse.Flag(raw),
		Raw:          raw,
	}
}
