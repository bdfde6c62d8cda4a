package can

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) (*Controller, *fakeChip) {
	t.Helper()
	chip := newFakeChip()
	registry := TransportRegistry{TransportSPI0: chip}
	cfg := Config{
		Transport: TransportSPI0,
		Baud:      Baud500k,
		Mode:      ModeNormal,
	}
	c, err := Init(cfg, registry, &fakeDelayer{})
	require.NoError(t, err)
	require.NotNil(t, c)
	return c, chip
}

func TestInitUnknownTransportReturnsError(t *testing.T) {
	registry := TransportRegistry{}
	cfg := Config{Transport: TransportNone}
	c, err := Init(cfg, registry, &fakeDelayer{})
	require.ErrorIs(t, err, ErrUnknownTransport)
	require.Nil(t, c)
}

func TestEnterConfigThenRun(t *testing.T) {
	c, chip := newTestController(t)

	cfgH, err := c.EnterConfig()
	require.NoError(t, err)
	require.NotNil(t, cfgH)
	require.Equal(t, ModeConfiguration, c.CurrentMode())
	require.Equal(t, ModeConfiguration.reqop(), chip.regs[regCANCTRL]&0xE0)

	h, err := c.Enter(ModeLoopback)
	require.NoError(t, err)
	require.NotNil(t, h)
	require.Equal(t, ModeLoopback, c.CurrentMode())
	require.Equal(t, ModeLoopback.reqop(), chip.regs[regCANCTRL]&0xE0)
}

func TestModeIdempotence(t *testing.T) {
	c, _ := newTestController(t)

	_, err := c.Enter(ModeListenOnly)
	require.NoError(t, err)
	firstMode := c.CurrentMode()

	_, err = c.Enter(ModeListenOnly)
	require.NoError(t, err)
	require.Equal(t, firstMode, c.CurrentMode())
	require.Equal(t, ModeListenOnly, c.CurrentMode())
}

func TestEnterInvalidModeReturnsError(t *testing.T) {
	c, chip := newTestController(t)
	before := chip.regs[regCANCTRL]

	h, err := c.Enter(OperationMode(0x7))
	require.ErrorIs(t, err, ErrInvalidMode)
	require.Nil(t, h)
	require.Equal(t, before, chip.regs[regCANCTRL])
}

func TestConfigHandleLeaveReturnsRunHandle(t *testing.T) {
	c, _ := newTestController(t)

	cfgH, err := c.EnterConfig()
	require.NoError(t, err)
	require.NotNil(t, cfgH)

	runH, err := cfgH.Leave(ModeNormal)
	require.NoError(t, err)
	require.NotNil(t, runH)
	require.Equal(t, ModeNormal, c.CurrentMode())
}
