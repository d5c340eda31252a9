// internal/command/command.go
package command

import (
	"sort"
	"time"
)

// Kind fixes execution order: commands run by ascending Kind,
// whatever order they were requested in.
type Kind int

const (
	KindDump Kind = iota
	KindEnable
	KindDisable
	KindReset
	KindCheck
)

func (k Kind) String() string {
	switch k {
	case KindDump:
		return "dump"
	case KindEnable:
		return "enable"
	case KindDisable:
		return "disable"
	case KindReset:
		return "reset"
	case KindCheck:
		return "check"
	default:
		return "unknown"
	}
}

// Command is one requested operation. The set of variants is closed.
type Command interface {
	Kind() Kind
}

// Dump prints every register Count times, Delay apart.
type Dump struct {
	Count int // <= 0 means 1
	Delay time.Duration
}

// Enable computes a plan for the reference clock and applies it.
type Enable struct {
	FrequencyHz float64
	PPM         float64
}

// Disable clears CONTROL.EN, keeping every other bit.
type Disable struct{}

// Reset disables, waits Delay, then re-enables.
type Reset struct {
	Delay time.Duration
}

// Check runs the monitor loop.
type Check struct {
	Count          int // 0 = until cancelled
	Delay          time.Duration
	BannerInterval int
}

func (Dump) Kind() Kind    { return KindDump }
func (Enable) Kind() Kind  { return KindEnable }
func (Disable) Kind() Kind { return KindDisable }
func (Reset) Kind() Kind   { return KindReset }
func (Check) Kind() Kind   { return KindCheck }

// Sort returns cmds in execution order. The input is not modified.
// Commands of the same kind keep their relative order.
func Sort(cmds []Command) []Command {
	out := make([]Command, len(cmds))
	copy(out, cmds)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind() < out[j].Kind()
	})
	return out
}
