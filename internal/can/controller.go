package can

import "github.com/edgeflow/mcp2515/internal/hal"

// TransportSelector names which SPI transport instance backs a chip. The
// driver never multiplexes one transport across handles; for an
// unrecognized selector Init writes nothing to any chip and returns
// ErrUnknownTransport.
type TransportSelector int

const (
	TransportNone TransportSelector = iota
	TransportSPI0
	TransportSPI1
)

// RxAcceptMode selects, per RX buffer, whether it honors its filters or
// accepts any frame.
type RxAcceptMode int

const (
	AcceptFiltered RxAcceptMode = iota
	AcceptAny
)

// Rollover selects whether RXB0 overflow spills into RXB1 (BUKT).
type Rollover int

const (
	RolloverDisabled Rollover = iota
	RolloverEnabled
)

// Config is the controller handle: the per-chip configuration and
// identity. It is not modified after Init; Mode is only the mode Init
// commits, and later Enter/EnterConfig transitions are tracked by the
// Controller (see CurrentMode).
type Config struct {
	Transport    TransportSelector
	Baud         BaudRate
	OneShot      OneShotMode
	Sample       SamplePoint
	WakeUp       WakeUpFilter
	RXB0Accept   RxAcceptMode
	RXB1Accept   RxAcceptMode
	RXB0Rollover Rollover
	Mode         OperationMode

	// OscillatorHz is the controller's crystal/resonator frequency,
	// used only to derive the post-reset OST delay. Defaults to 8 MHz
	// (the bit-timing table's assumption) when zero.
	OscillatorHz uint32
}

// Controller is the live, initialized driver instance for one chip.
type Controller struct {
	cfg         Config
	spi         *spiLayer
	mode        *modeController
	currentMode OperationMode
}

// TransportRegistry resolves a TransportSelector to a live hal.SPIProvider.
// Populated by the host before calling Init; the driver never constructs
// transports itself (§9: transport selector is a capability, not a
// hard-coded instance).
type TransportRegistry map[TransportSelector]hal.SPIProvider

// Init composes the controller bring-up sequence documented in §4's init
// composition: reset, program bit-timing, configure RX-buffer accept/
// rollover modes, and commit the requested operation mode. An unrecognized
// transport selector is reported as ErrUnknownTransport rather than built
// silently — a caller has no controller to drive either way, so it should
// at least learn why.
func Init(cfg Config, registry TransportRegistry, delay Delayer) (*Controller, error) {
	spiProvider, ok := registry[cfg.Transport]
	if !ok || cfg.Transport == TransportNone {
		return nil, ErrUnknownTransport
	}

	oscHz := cfg.OscillatorHz
	if oscHz == 0 {
		oscHz = 8_000_000
	}

	spi := &spiLayer{spi: spiProvider, delay: delay}
	c := &Controller{
		cfg:         cfg,
		spi:         spi,
		mode:        &modeController{spi: spi},
		currentMode: ModeConfiguration,
	}

	if err := spi.reset(oscHz); err != nil {
		return nil, err
	}

	if err := c.setBaudRate(cfg.Baud, cfg.Sample, cfg.WakeUp); err != nil {
		return nil, err
	}

	if err := c.configureRxBufferModes(); err != nil {
		return nil, err
	}

	if _, err := c.Enter(cfg.Mode); err != nil {
		return nil, err
	}

	return c, nil
}

// setBaudRate plans and writes CNF1/CNF2/CNF3. An unsupported baud rate
// leaves CNF1-3 untouched and reports ErrUnsupportedBaud.
func (c *Controller) setBaudRate(baud BaudRate, sample SamplePoint, wakeup WakeUpFilter) error {
	cnf1, cnf2, cnf3, ok := planBitTiming(baud, sample, wakeup)
	if !ok {
		return ErrUnsupportedBaud
	}
	return c.spi.writeRegisters(regCNF3, []byte{cnf3, cnf2, cnf1})
}

// configureRxBufferModes writes RXB0CTRL/RXB1CTRL's RXM and BUKT fields
// per the handle's accept/rollover selections (init step 5).
func (c *Controller) configureRxBufferModes() error {
	rxb0 := byte(0)
	if c.cfg.RXB0Accept == AcceptAny {
		rxb0 |= rxb0ctrlRXM
	}
	if c.cfg.RXB0Rollover == RolloverEnabled {
		rxb0 |= rxb0ctrlBUKT
	}
	if err := c.spi.writeRegisters(regRXB0CTRL, []byte{rxb0}); err != nil {
		return err
	}

	rxb1 := byte(0)
	if c.cfg.RXB1Accept == AcceptAny {
		rxb1 |= rxb1ctrlRXM
	}
	return c.spi.writeRegisters(regRXB1CTRL, []byte{rxb1})
}

// CurrentMode reports the mode the driver last committed via Enter or
// EnterConfig. It is not read back from the chip (§4.F: the driver does
// not poll CANSTAT for acknowledgement).
func (c *Controller) CurrentMode() OperationMode {
	return c.currentMode
}
