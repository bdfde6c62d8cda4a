package can

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanBitTimingKnownRates(t *testing.T) {
	cases := []struct {
		baud             BaudRate
		cnf1, cnf2, cnf3 byte
	}{
		{Baud500k, 0x00, 0x89, 0x02},
		{Baud250k, 0x00, 0xA3, 0x05},
		{Baud125k, 0x01, 0xAA, 0x05},
		{Baud100k, 0x01, 0xAD, 0x06},
		{Baud50k, 0x03, 0xAD, 0x06},
	}

	for _, c := range cases {
		cnf1, cnf2, cnf3, ok := planBitTiming(c.baud, SampleOnce, WakeUpFilterDisabled)
		assert.True(t, ok)
		assert.Equalf(t, c.cnf1, cnf1, "baud %v cnf1", c.baud)
		assert.Equalf(t, c.cnf2, cnf2, "baud %v cnf2", c.baud)
		assert.Equalf(t, c.cnf3, cnf3, "baud %v cnf3", c.baud)
	}
}

func TestPlanBitTimingUnsupportedRate(t *testing.T) {
	_, _, _, ok := planBitTiming(BaudRate(99), SampleOnce, WakeUpFilterDisabled)
	assert.False(t, ok)
}

func TestPlanBitTimingSampleAndWakeupBits(t *testing.T) {
	_, cnf2, cnf3, ok := planBitTiming(Baud500k, SampleThriceTimes, WakeUpFilterEnabled)
	assert.True(t, ok)
	assert.NotZero(t, cnf2&cnf2SAM)
	assert.NotZero(t, cnf3&cnf3WAKFIL)
}
