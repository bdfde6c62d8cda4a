package can

import (
	"github.com/edgeflow/mcp2515/internal/hal"
)

// SPI opcodes (§6). READ-STATUS and RX-STATUS are reserved by the protocol
// but not required by the four primitives in §4.D; this driver uses
// READ-STATUS only as an internal fast-path for SendAny (see tx.go) and
// issues RX-STATUS nowhere, so neither replaces the
// write_registers/read_registers/bit_modify sequences that Send and Read
// are specified against.
const (
	opReset      byte = 0xC0
	opWrite      byte = 0x02
	opRead       byte = 0x03
	opBitModify  byte = 0x05
	opReadStatus byte = 0xA0
	opRxStatus   byte = 0xB0

	opLoadTXB0 byte = 0x40
	opLoadTXB1 byte = 0x42
	opLoadTXB2 byte = 0x44

	opRTSTXB0 byte = 0x81
	opRTSTXB1 byte = 0x82
	opRTSTXB2 byte = 0x84

	opReadRXB0 byte = 0x90
	opReadRXB1 byte = 0x94
)

var loadTXOpcode = [3]byte{opLoadTXB0, opLoadTXB1, opLoadTXB2}
var rtsTXOpcode = [3]byte{opRTSTXB0, opRTSTXB1, opRTSTXB2}
var readRXOpcode = [2]byte{opReadRXB0, opReadRXB1}

const settleDelayUS = 50

// spiLayer implements §4.D: the four SPI command primitives. Every call is
// one hal.SPIProvider.Transfer — periph.io (or the mock) asserts chip
// select for the duration of that single Transfer and deasserts it on
// return, on every exit path, so this layer never manages CS directly.
type spiLayer struct {
	spi   hal.SPIProvider
	delay Delayer
}

// reset issues the RESET opcode, then waits the instruction-processing
// settle time followed by the oscillator start-up time (OST = 128 clock
// periods at oscHz).
func (s *spiLayer) reset(oscHz uint32) error {
	if _, err := s.spi.Transfer([]byte{opReset}); err != nil {
		return err
	}
	s.delay.DelayMicroseconds(settleDelayUS)
	ost := uint32(128_000_000 / oscHz)
	s.delay.DelayMicroseconds(ost)
	return nil
}

// writeRegisters writes data starting at addr; the controller
// auto-increments the address for bytes after the first.
func (s *spiLayer) writeRegisters(addr byte, data []byte) error {
	buf := make([]byte, 2+len(data))
	buf[0] = opWrite
	buf[1] = addr
	copy(buf[2:], data)
	if _, err := s.spi.Transfer(buf); err != nil {
		return err
	}
	s.delay.DelayMicroseconds(settleDelayUS)
	return nil
}

// readRegisters reads n bytes starting at addr.
func (s *spiLayer) readRegisters(addr byte, n int) ([]byte, error) {
	buf := make([]byte, 2+n)
	buf[0] = opRead
	buf[1] = addr
	rx, err := s.spi.Transfer(buf)
	if err != nil {
		return nil, err
	}
	s.delay.DelayMicroseconds(settleDelayUS)
	return rx[2:], nil
}

// bitModify writes value into addr under mask. Only bit-modifiable
// registers honor mask; callers must avoid issuing this against registers
// that are not bit-modifiable (the controller forces a full byte write on
// those regardless of mask).
func (s *spiLayer) bitModify(addr, mask, value byte) error {
	if _, err := s.spi.Transfer([]byte{opBitModify, addr, mask, value}); err != nil {
		return err
	}
	s.delay.DelayMicroseconds(settleDelayUS)
	return nil
}

// readStatus and rxStatus are the two reserved quick-status opcodes.
// readStatus backs SendAny's buffer-selection convenience (see tx.go);
// rxStatus has no caller in the driver.
func (s *spiLayer) readStatus() (byte, error) {
	rx, err := s.spi.Transfer([]byte{opReadStatus, 0x00})
	if err != nil {
		return 0, err
	}
	s.delay.DelayMicroseconds(settleDelayUS)
	return rx[1], nil
}

func (s *spiLayer) rxStatus() (byte, error) {
	rx, err := s.spi.Transfer([]byte{opRxStatus, 0x00})
	if err != nil {
		return 0, err
	}
	s.delay.DelayMicroseconds(settleDelayUS)
	return rx[1], nil
}

// loadTXBurst and requestToSend are the LOAD-TXBn/RTS-TXBn fast opcodes
// (§4 supplement): a one-byte-opcode substitute for writeRegisters+
// bitModify(TXREQ) against a fixed buffer, used only by SendAny.
func (s *spiLayer) loadTXBurst(buf int, data []byte) error {
	req := make([]byte, 1+len(data))
	req[0] = loadTXOpcode[buf]
	copy(req[1:], data)
	if _, err := s.spi.Transfer(req); err != nil {
		return err
	}
	s.delay.DelayMicroseconds(settleDelayUS)
	return nil
}

func (s *spiLayer) requestToSend(buf int) error {
	if _, err := s.spi.Transfer([]byte{rtsTXOpcode[buf]}); err != nil {
		return err
	}
	s.delay.DelayMicroseconds(settleDelayUS)
	return nil
}

// readRXBurst is the READ-RXBn fast opcode: reads n bytes starting at the
// buffer's SIDH (or, with the bit set internally by the controller, its
// data registers) without a separate address byte.
func (s *spiLayer) readRXBurst(buf int, n int) ([]byte, error) {
	req := make([]byte, 1+n)
	req[0] = readRXOpcode[buf]
	rx, err := s.spi.Transfer(req)
	if err != nil {
		return nil, err
	}
	s.delay.DelayMicroseconds(settleDelayUS)
	return rx[1:], nil
}
