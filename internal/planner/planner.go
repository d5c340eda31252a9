// internal/planner/planner.go
package planner

import (
	"errors"
	"fmt"
	"math"

	"github.com/tamzrod/gpsdoctl/internal/regmap"
)

// ErrInvalidInput is returned for non-positive or non-finite frequency/ppm.
var ErrInvalidInput = errors.New("planner: frequency and ppm must be finite and > 0")

// PlanningError is a derived value that does not fit its register(s).
// It is returned before any register is written.
type PlanningError struct {
	Field string
	Value float64
	Limit uint64
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planner: %s=%.0f exceeds %d", e.Field, e.Value, e.Limit)
}

// clkSelRelTol is the relative tolerance for "the reference is 10 MHz".
const clkSelRelTol = 1e-9

// ClkSel10MHz is the reference selected by CLK_SEL=1 (LMK10); CLK_SEL=0 selects the 30.72 MHz LMKRF.
const ClkSel10MHz = 10e6

// Plan is the full configuration for one reference frequency and ppm target.
// Index i of Targets/Tolerances matches regmap.Windows[i].
type Plan struct {
	FrequencyHz float64
	PPM         float64

	Targets    [3]uint32 // expected counts over 1s, 10s, 100s
	Tolerances [3]uint16 // Hz
	ClkSel     uint16
}

// Compute derives targets and tolerances.
//
// target_Ns = N*round(f); tol_1s = round(f*ppm/1e6), tol_Ns = N*tol_1s.
// The 10s/100s tolerances are multiples of tol_1s, never rounded on their own,
// so the ppm accuracy is identical across time bases.
func Compute(frequencyHz, ppm float64) (Plan, error) {
	if !(frequencyHz > 0) || !(ppm > 0) || math.IsInf(frequencyHz, 0) || math.IsInf(ppm, 0) {
		return Plan{}, fmt.Errorf("%w: frequency=%v ppm=%v", ErrInvalidInput, frequencyHz, ppm)
	}

	p := Plan{FrequencyHz: frequencyHz, PPM: ppm}

	base := math.Round(frequencyHz)
	tol := math.Round(frequencyHz * ppm / 1e6)

	for i, w := range regmap.Windows {
		n := float64(w.Seconds)

		target := base * n
		if target > math.MaxUint32 {
			return Plan{}, &PlanningError{Field: "target_" + w.Name, Value: target, Limit: math.MaxUint32}
		}
		p.Targets[i] = uint32(target)

		t := tol * n
		if t > math.MaxUint16 {
			return Plan{}, &PlanningError{Field: "tol_" + w.Name, Value: t, Limit: math.MaxUint16}
		}
		p.Tolerances[i] = uint16(t)
	}

	if isClose(frequencyHz, ClkSel10MHz, clkSelRelTol) {
		p.ClkSel = 1
	}

	return p, nil
}

func isClose(a, b, relTol float64) bool {
	return math.Abs(a-b) <= relTol*math.Max(math.Abs(a), math.Abs(b))
}

// Write is one register write of a plan.
type Write struct {
	Addr  regmap.Address
	Value uint16
}

// Writes returns the target/tolerance writes in commit order:
// per time base, target low, target high, tolerance.
// CONTROL is not part of the list; Apply writes it last.
func (p Plan) Writes() []Write {
	out := make([]Write, 0, 9)
	for i, w := range regmap.Windows {
		out = append(out,
			Write{w.TargetL, uint16(p.Targets[i])},
			Write{w.TargetH, uint16(p.Targets[i] >> 16)},
			Write{w.Tol, p.Tolerances[i]},
		)
	}
	return out
}

// Control returns the CONTROL value to write given the current one:
// CLK_SEL from the plan, EN=1, every other bit unchanged.
func (p Plan) Control(cur uint16) uint16 {
	v := regmap.ControlClkSel.Set(cur, p.ClkSel)
	return regmap.ControlEN.SetFlag(v, true)
}

// Validate re-checks the integer invariants of a plan built by hand.
func (p Plan) Validate() error {
	for i, w := range regmap.Windows {
		n := w.Seconds
		if uint64(p.Targets[i]) != uint64(p.Targets[0])*uint64(n) {
			return fmt.Errorf("planner: target_%s=%d is not %d*target_1s", w.Name, p.Targets[i], n)
		}
		if uint32(p.Tolerances[i]) != uint32(p.Tolerances[0])*n {
			return fmt.Errorf("planner: tol_%s=%d is not %d*tol_1s", w.Name, p.Tolerances[i], n)
		}
	}
	if p.ClkSel > 1 {
		return fmt.Errorf("planner: clk_sel=%d", p.ClkSel)
	}
	return nil
}

// MHz is the reference frequency in MHz.
func (p Plan) MHz() float64 {
	return p.FrequencyHz / 1e6
}
