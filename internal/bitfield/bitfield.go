// internal/bitfield/bitfield.go
package bitfield

// Width is the register width in bits. All register I/O is 16-bit.
const Width = 16

// Mask returns the in-place mask for a field of size bits at offset.
// offset+size must not exceed Width.
func Mask(offset, size uint) uint16 {
	return uint16(((uint32(1) << size) - 1) << offset)
}

// Get extracts the field value, right-aligned.
func Get(reg uint16, offset, size uint) uint16 {
	return (reg & Mask(offset, size)) >> offset
}

// Set returns reg with the field replaced by v.
// Bits of v beyond size are dropped. Every bit outside the field is preserved.
func Set(reg uint16, offset, size uint, v uint16) uint16 {
	mask := Mask(offset, size)
	return (reg &^ mask) | ((v << offset) & mask)
}

// Field is a named bit range inside one register.
type Field struct {
	Name   string
	Offset uint
	Size   uint
}

// Get extracts f from reg.
func (f Field) Get(reg uint16) uint16 {
	return Get(reg, f.Offset, f.Size)
}

// Set returns reg with f replaced by v.
func (f Field) Set(reg uint16, v uint16) uint16 {
	return Set(reg, f.Offset, f.Size, v)
}

// Mask returns the in-place mask of f.
func (f Field) Mask() uint16 {
	return Mask(f.Offset, f.Size)
}

// Flag reports whether a 1-bit field is set.
func (f Field) Flag(reg uint16) bool {
	return f.Get(reg) != 0
}

// SetFlag sets or clears a 1-bit field.
func (f Field) SetFlag(reg uint16, on bool) uint16 {
	if on {
		return f.Set(reg, 1)
	}
	return f.Set(reg, 0)
}
