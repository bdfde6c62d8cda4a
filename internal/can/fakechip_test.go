package can

import "github.com/edgeflow/mcp2515/internal/hal"

// fakeChip is a register-level model of the controller, standing in for
// silicon in tests: it decodes the same opcode stream transport.go emits
// and keeps a 128-byte register file, so tests exercise the real encode/
// decode and opcode-framing logic end to end without any real SPI bus.
type fakeChip struct {
	regs [0x80]byte
}

var _ hal.SPIProvider = (*fakeChip)(nil)

func newFakeChip() *fakeChip {
	c := &fakeChip{}
	c.applyResetDefaults()
	return c
}

func (c *fakeChip) applyResetDefaults() {
	for i := range c.regs {
		c.regs[i] = 0
	}
	c.regs[regCANCTRL] = ModeConfiguration.reqop()
	c.regs[regCANSTAT] = ModeConfiguration.reqop()
}

func (c *fakeChip) Open(bus, device int) error    { return nil }
func (c *fakeChip) SetSpeed(speed int) error       { return nil }
func (c *fakeChip) SetMode(mode byte) error        { return nil }
func (c *fakeChip) SetBitsPerWord(bits byte) error { return nil }
func (c *fakeChip) Close() error                   { return nil }

func (c *fakeChip) Transfer(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	op := data[0]

	switch op {
	case opReset:
		c.applyResetDefaults()
		return data, nil

	case opWrite:
		addr := data[1]
		for i, b := range data[2:] {
			c.regs[int(addr)+i] = b
		}
		return data, nil

	case opRead:
		addr := data[1]
		n := len(data) - 2
		out := make([]byte, len(data))
		copy(out[:2], data[:2])
		copy(out[2:], c.regs[int(addr):int(addr)+n])
		return out, nil

	case opBitModify:
		addr, mask, value := data[1], data[2], data[3]
		c.regs[addr] = c.regs[addr]&^mask | value&mask
		return data, nil

	case opReadStatus:
		return []byte{op, c.readStatusByte()}, nil

	case opRxStatus:
		return []byte{op, c.rxStatusByte()}, nil

	case opLoadTXB0, opLoadTXB1, opLoadTXB2:
		buf := txBufferForLoadOp(op)
		addr := txSidhAddr[buf]
		for i, b := range data[1:] {
			c.regs[int(addr)+i] = b
		}
		return data, nil

	case opRTSTXB0, opRTSTXB1, opRTSTXB2:
		buf := txBufferForRTSOp(op)
		c.regs[txCtrlAddr[buf]] |= txCtrlTXREQ
		return data, nil

	case opReadRXB0, opReadRXB1:
		buf := 0
		if op == opReadRXB1 {
			buf = 1
		}
		addr := rxSidhAddr[buf]
		n := len(data) - 1
		out := make([]byte, len(data))
		out[0] = op
		copy(out[1:], c.regs[int(addr):int(addr)+n])
		return out, nil
	}

	return data, nil
}

func (c *fakeChip) readStatusByte() byte {
	var b byte
	for i := 0; i < 3; i++ {
		if c.regs[txCtrlAddr[i]]&txCtrlTXREQ != 0 {
			b |= readStatusTXREQBit[i]
		}
	}
	return b
}

func (c *fakeChip) rxStatusByte() byte {
	return 0
}

func txBufferForLoadOp(op byte) int {
	switch op {
	case opLoadTXB0:
		return 0
	case opLoadTXB1:
		return 1
	default:
		return 2
	}
}

func txBufferForRTSOp(op byte) int {
	switch op {
	case opRTSTXB0:
		return 0
	case opRTSTXB1:
		return 1
	default:
		return 2
	}
}

// fakeDelayer records requested delays without blocking, so tests run at
// full speed while still exercising every call site that waits.
type fakeDelayer struct {
	totalUS uint64
	calls   int
}

func (d *fakeDelayer) DelayMicroseconds(us uint32) {
	d.totalUS += uint64(us)
	d.calls++
}
