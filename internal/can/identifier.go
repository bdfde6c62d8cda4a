package can

// ID is a packed 29-bit CAN identifier. For a standard frame only the 11
// least-significant bits are meaningful. For an extended frame the packed
// value is (standardID<<18)|extendedID, matching the bit layout the
// controller's split SIDH/SIDL/EID8/EID0 registers expect: bits[28:18] hold
// the standard ID, bits[17:0] hold the extended ID.
//
// Callers should not compute the composite themselves; use StandardID or
// ExtendedID and read it back with Standard11 or Parts.
type ID uint32

const (
	standardIDMask = 0x7FF    // 11 bits
	extendedIDMask = 0x3FFFF  // 18 bits
	packedIDMask   = 0x1FFFFFFF // 29 bits
)

// StandardID builds an ID from an 11-bit standard identifier. Bits beyond
// the low 11 are discarded.
func StandardID(id uint16) ID {
	return ID(id) & standardIDMask
}

// ExtendedID builds an ID from an 11-bit standard field and an 18-bit
// extended field, composed as the controller expects: (std<<18)|ext.
func ExtendedID(std uint16, ext uint32) ID {
	return ID((uint32(std)&standardIDMask)<<18 | (ext & extendedIDMask))
}

// PackedExtendedID builds an ID directly from its already-composed 29-bit
// packed value (bits[28:18]=std, bits[17:0]=ext).
func PackedExtendedID(packed uint32) ID {
	return ID(packed & packedIDMask)
}

// Standard11 projects the ID as a bare 11-bit standard identifier. Only
// meaningful when the ID was constructed (or is being interpreted) as a
// standard-frame identifier.
func (id ID) Standard11() uint16 {
	return uint16(id) & standardIDMask
}

// Parts projects the ID as its extended-frame components: the 11-bit
// standard field and the 18-bit extended field.
func (id ID) Parts() (std uint16, ext uint32) {
	std = uint16((uint32(id) >> 18) & standardIDMask)
	ext = uint32(id) & extendedIDMask
	return std, ext
}

// Packed returns the raw 29-bit composite value.
func (id ID) Packed() uint32 {
	return uint32(id) & packedIDMask
}
