package can

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeIDStandard(t *testing.T) {
	id := StandardID(0x555)
	sidh, sidl, eid8, eid0 := encodeID(id, false)

	got, extended := decodeID(sidh, sidl, eid8, eid0)
	assert.False(t, extended)
	assert.Equal(t, id.Standard11(), got.Standard11())
	assert.Zero(t, eid8)
	assert.Zero(t, eid0)
}

func TestEncodeDecodeIDExtended(t *testing.T) {
	id := PackedExtendedID(0x1D0CAFC8)
	sidh, sidl, eid8, eid0 := encodeID(id, true)
	assert.NotZero(t, sidl&sidlEXIDE)

	got, extended := decodeID(sidh, sidl, eid8, eid0)
	assert.True(t, extended)
	assert.Equal(t, id.Packed(), got.Packed())
}

func TestEncodeIDRoundTripProperty(t *testing.T) {
	stds := []uint16{0, 1, 0x123, 0x555, 0x7FF}
	exts := []uint32{0, 1, 0x0AFC8, 0x3FFFF}

	for _, s := range stds {
		id := StandardID(s)
		sidh, sidl, eid8, eid0 := encodeID(id, false)
		got, extended := decodeID(sidh, sidl, eid8, eid0)
		assert.False(t, extended)
		assert.Equal(t, s, got.Standard11())
	}

	for _, s := range stds {
		for _, e := range exts {
			id := ExtendedID(s, e)
			sidh, sidl, eid8, eid0 := encodeID(id, true)
			got, extended := decodeID(sidh, sidl, eid8, eid0)
			assert.True(t, extended)
			gotStd, gotExt := got.Parts()
			assert.Equal(t, s, gotStd)
			assert.Equal(t, e, gotExt)
		}
	}
}

func TestEncodeDLC(t *testing.T) {
	assert.Equal(t, byte(0x05), encodeDLC(5, false))
	assert.Equal(t, byte(0x45), encodeDLC(5, true))
}

func TestEncodeDLCClampsAboveEight(t *testing.T) {
	// §8 property 3: DLC clamp — only the low nibble is written.
	b := encodeDLC(0x1A, false) // 26 decimal, low nibble 0xA
	assert.Equal(t, byte(0x0A), b)
}
