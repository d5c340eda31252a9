// internal/status/encode.go
package status

// Encode converts a Block into the full mirror register block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(b Block) []uint16 {
	regs := make([]uint16, SlotsPerBlock)

	regs[SlotHealthCode] = b.Health
	regs[SlotEnabled] = flag(b.Enabled)
	regs[SlotState] = uint16(b.State)
	regs[SlotAccuracy] = uint16(b.Accuracy)
	regs[SlotTPulse] = flag(b.TPulse)
	regs[SlotDAC] = b.DAC

	putInt32(regs, SlotErr1sL, b.Err1s)
	putInt32(regs, SlotErr10sL, b.Err10s)
	putInt32(regs, SlotErr100sL, b.Err100s)

	regs[SlotSequence] = b.Sequence

	// Slots 13..15 are RESERVED → left as zero

	return regs
}

// Diff returns the smallest contiguous slot range [first, last] that differs
// between two encoded blocks. ok is false when they are identical.
func Diff(prev, next []uint16) (first, last int, ok bool) {
	first, last = -1, -1
	for i := 0; i < SlotsPerBlock && i < len(prev) && i < len(next); i++ {
		if prev[i] == next[i] {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	return first, last, first >= 0
}

func flag(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

func putInt32(regs []uint16, lo int, v int32) {
	u := uint32(v)
	regs[lo] = uint16(u)
	regs[lo+1] = uint16(u >> 16)
}
