package can

import "errors"

// Sentinel errors for the "invalid configuration" class from the driver
// contract. The protocol itself treats these as no-ops — nothing is written
// to the chip — but a Go caller gets a concrete error back instead of a
// silently unconfigured controller.
var (
	ErrUnknownTransport = errors.New("can: unrecognized transport selector")
	ErrUnsupportedBaud  = errors.New("can: unsupported baud rate")
	ErrInvalidDLC       = errors.New("can: dlc out of range")
	ErrInvalidMode      = errors.New("can: operation mode not one of the five enumerated modes")
	ErrNoBufferSelected = errors.New("can: no buffer selected")
)
