// internal/status/constants.go
package status

// GPSDO mirror block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerBlock is the fixed number of holding registers in the mirror block.
const SlotsPerBlock = 16

// ---- SLOT INDICES ----

// SlotHealthCode holds the monitor health state.
const SlotHealthCode = 0

// SlotEnabled holds CONTROL.EN (0/1).
const SlotEnabled = 1

// SlotState holds the raw STATUS.STATE field.
const SlotState = 2

// SlotAccuracy holds the raw STATUS.ACCURACY field.
const SlotAccuracy = 3

// SlotTPulse holds STATUS.TPULSE_ACTIVE (0/1).
const SlotTPulse = 4

// SlotDAC holds DAC_TUNED_VAL.
const SlotDAC = 5

// Error pairs use the device's own split: low word first, then high word.
const (
	SlotErr1sL   = 6
	SlotErr1sH   = 7
	SlotErr10sL  = 8
	SlotErr10sH  = 9
	SlotErr100sL = 10
	SlotErr100sH = 11
)

// SlotSequence counts published samples and wraps at 65535.
const SlotSequence = 12

// ---- RESERVED RANGE ----

// Slots 13-15 are reserved for future use.
const SlotReservedStart = 13
const SlotReservedEnd = 15

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a successful last sample.
const HealthOK uint16 = 1

// HealthError represents a failed last sample.
const HealthError uint16 = 2

// HealthStale represents data no longer being refreshed.
const HealthStale uint16 = 3
