package can

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetFiltersOnlyWritesSelected(t *testing.T) {
	c, chip := newTestController(t)
	cfgH, err := c.EnterConfig()
	require.NoError(t, err)

	before := chip.regs[filterBaseAddr[1]]

	values := [6]FilterValue{
		{ID: StandardID(0x100)},
		{ID: StandardID(0x200)}, // Filter1 not selected, must stay untouched
	}
	require.NoError(t, cfgH.SetFilters(Filter0, values))

	require.Equal(t, before, chip.regs[filterBaseAddr[1]])

	sidh, sidl, _, _ := encodeID(StandardID(0x100), false)
	require.Equal(t, sidh, chip.regs[filterBaseAddr[0]])
	require.Equal(t, sidl, chip.regs[filterBaseAddr[0]+1])
}

func TestSetMasksBothSelected(t *testing.T) {
	c, chip := newTestController(t)
	cfgH, err := c.EnterConfig()
	require.NoError(t, err)

	m0 := MaskValue{ID: PackedExtendedID(0x1FFC0000)}
	m1 := MaskValue{ID: PackedExtendedID(0x1FFFFFFF)}
	require.NoError(t, cfgH.SetMasks(Mask0|Mask1, [2]MaskValue{m0, m1}))

	sidh0, _, _, _ := encodeID(m0.ID, true)
	sidh1, _, _, _ := encodeID(m1.ID, true)
	require.Equal(t, sidh0, chip.regs[maskBaseAddr[0]])
	require.Equal(t, sidh1, chip.regs[maskBaseAddr[1]])
}

func TestSetBitTimingWhileConfigured(t *testing.T) {
	c, chip := newTestController(t)
	cfgH, err := c.EnterConfig()
	require.NoError(t, err)

	require.NoError(t, cfgH.SetBitTiming(Baud250k, SampleOnce, WakeUpFilterDisabled))
	cnf1, cnf2, cnf3, ok := planBitTiming(Baud250k, SampleOnce, WakeUpFilterDisabled)
	require.True(t, ok)
	require.Equal(t, cnf1, chip.regs[regCNF1])
	require.Equal(t, cnf2, chip.regs[regCNF2])
	require.Equal(t, cnf3, chip.regs[regCNF3])
}
