// internal/regmap/regmap.go
package regmap

import (
	"fmt"

	"github.com/tamzrod/gpsdoctl/internal/bitfield"
)

// gpsdocfg register file.
// Addresses and layouts define wire compatibility with the FPGA core and MUST NOT be configurable.

// Address is a register address on the gpsdocfg bus.
type Address uint16

// ---- CONTROL ----

const Control Address = 0x00

// ---- TARGETS / TOLERANCES (rw) ----

const (
	PPS1sTargetL   Address = 0x01
	PPS1sTargetH   Address = 0x02
	PPS1sErrTol    Address = 0x03
	PPS10sTargetL  Address = 0x04
	PPS10sTargetH  Address = 0x05
	PPS10sErrTol   Address = 0x06
	PPS100sTargetL Address = 0x07
	PPS100sTargetH Address = 0x08
	PPS100sErrTol  Address = 0x09
)

// ---- MEASURED ERRORS (ro) ----

const (
	PPS1sErrL   Address = 0x0A
	PPS1sErrH   Address = 0x0B
	PPS10sErrL  Address = 0x0C
	PPS10sErrH  Address = 0x0D
	PPS100sErrL Address = 0x0E
	PPS100sErrH Address = 0x0F
)

// ---- DAC / STATUS (ro) ----

const (
	DACTunedVal Address = 0x10
	Status      Address = 0x11
)

// Count is the number of registers. Valid addresses are 0..Count-1.
const Count = 18

// ---- FIELDS ----

// CONTROL bits. All other CONTROL bits are reserved and must be preserved on write.
var (
	ControlEN     = bitfield.Field{Name: "EN", Offset: 0, Size: 1}
	ControlClkSel = bitfield.Field{Name: "CLK_SEL", Offset: 1, Size: 1}
)

// STATUS bits.
var (
	StatusState    = bitfield.Field{Name: "STATE", Offset: 0, Size: 4}
	StatusAccuracy = bitfield.Field{Name: "ACCURACY", Offset: 4, Size: 4}
	StatusTPulse   = bitfield.Field{Name: "TPULSE_ACTIVE", Offset: 8, Size: 1}
)

// Access tells whether the host may write a register.
type Access uint8

const (
	ReadWrite Access = iota
	ReadOnly
)

func (a Access) String() string {
	if a == ReadOnly {
		return "ro"
	}
	return "rw"
}

// Register describes one entry of the register file.
type Register struct {
	Addr   Address
	Name   string
	Access Access
	Fields []bitfield.Field // nil for plain 16-bit values
}

var table = [Count]Register{
	{Control, "CONTROL", ReadWrite, []bitfield.Field{ControlEN, ControlClkSel}},
	{PPS1sTargetL, "PPS_1S_TARGET_L", ReadWrite, nil},
	{PPS1sTargetH, "PPS_1S_TARGET_H", ReadWrite, nil},
	{PPS1sErrTol, "PPS_1S_ERR_TOL", ReadWrite, nil},
	{PPS10sTargetL, "PPS_10S_TARGET_L", ReadWrite, nil},
	{PPS10sTargetH, "PPS_10S_TARGET_H", ReadWrite, nil},
	{PPS10sErrTol, "PPS_10S_ERR_TOL", ReadWrite, nil},
	{PPS100sTargetL, "PPS_100S_TARGET_L", ReadWrite, nil},
	{PPS100sTargetH, "PPS_100S_TARGET_H", ReadWrite, nil},
	{PPS100sErrTol, "PPS_100S_ERR_TOL", ReadWrite, nil},
	{PPS1sErrL, "PPS_1S_ERR_L", ReadOnly, nil},
	{PPS1sErrH, "PPS_1S_ERR_H", ReadOnly, nil},
	{PPS10sErrL, "PPS_10S_ERR_L", ReadOnly, nil},
	{PPS10sErrH, "PPS_10S_ERR_H", ReadOnly, nil},
	{PPS100sErrL, "PPS_100S_ERR_L", ReadOnly, nil},
	{PPS100sErrH, "PPS_100S_ERR_H", ReadOnly, nil},
	{DACTunedVal, "DAC_TUNED_VAL", ReadOnly, nil},
	{Status, "STATUS", ReadOnly, []bitfield.Field{StatusState, StatusAccuracy, StatusTPulse}},
}

// Lookup returns the register at a. The table is closed: any other address is invalid.
func Lookup(a Address) (Register, bool) {
	if int(a) >= len(table) {
		return Register{}, false
	}
	return table[a], true
}

// Valid reports whether a is in the register table.
func Valid(a Address) bool {
	return int(a) < len(table)
}

// All returns the register table in address order.
func All() []Register {
	out := make([]Register, len(table))
	copy(out, table[:])
	return out
}

// MaxNameLen is the length of the longest register name.
func MaxNameLen() int {
	n := 0
	for _, r := range table {
		if len(r.Name) > n {
			n = len(r.Name)
		}
	}
	return n
}

func (a Address) String() string {
	if r, ok := Lookup(a); ok {
		return r.Name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", uint16(a))
}

// Window groups the registers of one regulation time base.
type Window struct {
	Name    string
	Seconds uint32
	TargetL Address
	TargetH Address
	Tol     Address
	ErrL    Address
	ErrH    Address
}

// Windows lists the 1s, 10s and 100s time bases in that order.
var Windows = [3]Window{
	{"1s", 1, PPS1sTargetL, PPS1sTargetH, PPS1sErrTol, PPS1sErrL, PPS1sErrH},
	{"10s", 10, PPS10sTargetL, PPS10sTargetH, PPS10sErrTol, PPS10sErrL, PPS10sErrH},
	{"100s", 100, PPS100sTargetL, PPS100sTargetH, PPS100sErrTol, PPS100sErrL, PPS100sErrH},
}
