package can

// This file implements §4.F: the mode controller. Modes form a complete
// graph — any mode reaches any other via a single CANCTRL write — but the
// driver exposes that write only through type-state views so that
// mask/filter/bit-timing methods are reachable only while the handle is
// known, at the Go type level, to be in configuration mode.

// OperationMode is one of the five REQOP states the controller supports.
type OperationMode byte

const (
	ModeNormal OperationMode = iota
	ModeSleep
	ModeLoopback
	ModeListenOnly
	ModeConfiguration
)

// reqop returns the CANCTRL bits[7:5] encoding for the mode.
func (m OperationMode) reqop() byte {
	switch m {
	case ModeNormal:
		return 0x00
	case ModeSleep:
		return 0x01 << 5
	case ModeLoopback:
		return 0x02 << 5
	case ModeListenOnly:
		return 0x03 << 5
	case ModeConfiguration:
		return 0x04 << 5
	default:
		return 0x00
	}
}

// OneShotMode selects the CANCTRL OSM bit.
type OneShotMode int

const (
	Reattempt OneShotMode = iota
	NoReattempt
)

// modeController owns the single CANCTRL write that changes operation
// mode. It does not poll CANSTAT for acknowledgement — per §4.F, a caller
// observes the new mode only after the 50µs settling a bit-modify/write
// already performs.
type modeController struct {
	spi *spiLayer
}

func (m *modeController) setOperationMode(mode OperationMode, oneShot OneShotMode) error {
	val := mode.reqop()
	if oneShot == NoReattempt {
		val |= canctrlOSM
	}
	return m.spi.writeRegisters(regCANCTRL, []byte{val})
}

// ConfigHandle is the type-state view of a controller handle available
// only while the driver placed it in configuration mode. Bit-timing,
// mask, and filter writes are reachable only through this view.
type ConfigHandle struct {
	c *Controller
}

// RunHandle is the type-state view available in any non-configuration
// mode: send, read, status, and interrupt/error operations.
type RunHandle struct {
	c *Controller
}

// EnterConfig transitions the controller into configuration mode and
// returns the type-state view that unlocks timing/mask/filter writes.
func (c *Controller) EnterConfig() (*ConfigHandle, error) {
	if err := c.mode.setOperationMode(ModeConfiguration, c.cfg.OneShot); err != nil {
		return nil, err
	}
	c.currentMode = ModeConfiguration
	return &ConfigHandle{c: c}, nil
}

// Enter transitions the controller to mode and returns the run-time view.
// Entering ModeConfiguration through this path is legal but callers
// wanting the timing/mask/filter methods should use EnterConfig instead.
// mode must be one of the five enumerated OperationMode values; anything
// else reports ErrInvalidMode without touching CANCTRL.
func (c *Controller) Enter(mode OperationMode) (*RunHandle, error) {
	if !mode.valid() {
		return nil, ErrInvalidMode
	}
	if err := c.mode.setOperationMode(mode, c.cfg.OneShot); err != nil {
		return nil, err
	}
	c.currentMode = mode
	return &RunHandle{c: c}, nil
}

// valid reports whether m is one of the five REQOP states the controller
// supports.
func (m OperationMode) valid() bool {
	switch m {
	case ModeNormal, ModeSleep, ModeLoopback, ModeListenOnly, ModeConfiguration:
		return true
	default:
		return false
	}
}

// Leave transitions out of configuration mode into mode, returning the
// run-time view.
func (h *ConfigHandle) Leave(mode OperationMode) (*RunHandle, error) {
	return h.c.Enter(mode)
}
