// internal/planner/apply.go
package planner

import (
	"fmt"

	"github.com/tamzrod/gpsdoctl/internal/regmap"
)

// Target is what Apply needs from the device. *gpsdo.Client implements it.
type Target interface {
	Write(addr regmap.Address, value uint16) error
	UpdateControl(fn func(uint16) uint16) (uint16, error)
}

// Apply commits p: all target and tolerance registers first, CONTROL last.
// Enabling before every target/tolerance is written could let the core latch
// a partial configuration.
//
// The sequence is not transactional. On failure the registers written so far
// keep their new values and CONTROL is untouched; a later full Apply or an
// explicit disable brings the device back to a consistent state.
func Apply(t Target, p Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}

	writes := p.Writes()
	steps := len(writes) + 1

	for i, w := range writes {
		if err := t.Write(w.Addr, w.Value); err != nil {
			return fmt.Errorf("apply plan: step %d/%d %s: %w", i+1, steps, w.Addr, err)
		}
	}

	if _, err := t.UpdateControl(p.Control); err != nil {
		return fmt.Errorf("apply plan: step %d/%d %s: %w", steps, steps, regmap.Control, err)
	}
	return nil
}
