package can

// This file implements §4.G: the frame transmitter. Send processes the
// selected TX buffers in the fixed priority order {0,1,2}, overriding the
// controller's own TXP priority field — each buffer is fully encoded,
// requested, and waited to completion before the next begins.

const dlcMax = 8

// Send encodes and transmits the selected TX buffers in descriptor, in
// priority order {0,1,2}, blocking on each buffer's worst-case on-bus
// time before moving to the next. A selected buffer whose DLC exceeds the
// 8-byte maximum is rejected with ErrInvalidDLC before anything is written.
func (h *RunHandle) Send(desc TxDescriptor) error {
	c := h.c
	for i := 0; i < 3; i++ {
		bit := TxBufferSelect(1 << uint(i))
		if desc.Select&bit != 0 && desc.Buffers[i].DLC > dlcMax {
			return ErrInvalidDLC
		}
	}
	for i := 0; i < 3; i++ {
		bit := TxBufferSelect(1 << uint(i))
		if desc.Select&bit == 0 {
			continue
		}
		if err := c.sendOne(i, desc.Buffers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) sendOne(buf int, frame TxFrame) error {
	sidh, sidl, eid8, eid0 := encodeID(frame.ID, frame.FrameType.extended())
	dlcByte := encodeDLC(frame.DLC, frame.FrameType.remote())

	burst := []byte{sidh, sidl, eid8, eid0, dlcByte}
	if err := c.spi.writeRegisters(txSidhAddr[buf], burst); err != nil {
		return err
	}

	if !frame.FrameType.remote() {
		if err := c.spi.writeRegisters(txSidhAddr[buf]+5, frame.Data[:frame.DLC]); err != nil {
			return err
		}
	}

	if err := c.spi.bitModify(txCtrlAddr[buf], txCtrlTXREQ, txCtrlTXREQ); err != nil {
		return err
	}

	wait := worstCaseOnBusUS(frame.FrameType, frame.DLC, c.cfg.Baud)
	c.spi.delay.DelayMicroseconds(wait)
	return nil
}

// worstCaseOnBusUS computes the bit-stuffing worst-case on-bus duration
// for a frame, per §4.G's formulas.
func worstCaseOnBusUS(ft FrameType, dlc uint8, baud BaudRate) uint32 {
	bitUS := bitPeriodUS(baud)
	d := uint32(dlc)

	var bits uint32
	switch ft {
	case StdData:
		bits = 8*d + 44 + (33+8*d)/4
	case ExtData:
		bits = 8*d + 64 + (53+8*d)/4
	case StdRemote:
		bits = 50
	case ExtRemote:
		bits = 73
	}
	return bits * bitUS
}

// bitPeriodUS returns 1_000_000/baud, the duration of one bit in µs.
func bitPeriodUS(baud BaudRate) uint32 {
	switch baud {
	case Baud500k:
		return 2
	case Baud250k:
		return 4
	case Baud125k:
		return 8
	case Baud100k:
		return 10
	case Baud50k:
		return 20
	default:
		return 0
	}
}

// TxStatus reads and decodes TXBnCTRL for the given buffer, per §4.G's
// tie-break rule: the TXERR-AND-MLOA combination is checked before either
// single-flag case.
func (h *RunHandle) TxStatus(buf int) (TxState, error) {
	data, err := h.c.spi.readRegisters(txCtrlAddr[buf], 1)
	if err != nil {
		return Pending, err
	}
	ctrl := data[0]

	if ctrl&txCtrlABTF != 0 {
		return Aborted, nil
	}

	if ctrl&txCtrlTXREQ != 0 {
		txerr := ctrl&txCtrlTXERR != 0
		mloa := ctrl&txCtrlMLOA != 0
		switch {
		case txerr && mloa:
			return BusErrorAndLostArbitration, nil
		case txerr:
			return BusError, nil
		case mloa:
			return LostArbitration, nil
		default:
			return Pending, nil
		}
	}

	return Success, nil
}

// Abort clears TXREQ for each selected buffer.
func (h *RunHandle) Abort(sel TxBufferSelect) error {
	for i := 0; i < 3; i++ {
		bit := TxBufferSelect(1 << uint(i))
		if sel&bit == 0 {
			continue
		}
		if err := h.c.spi.bitModify(txCtrlAddr[i], txCtrlTXREQ, 0); err != nil {
			return err
		}
	}
	return nil
}

// AbortAll sets ABAT in CANCTRL to abort every pending transmission, then
// clears it.
func (h *RunHandle) AbortAll() error {
	if err := h.c.spi.bitModify(regCANCTRL, canctrlABAT, canctrlABAT); err != nil {
		return err
	}
	return h.c.spi.bitModify(regCANCTRL, canctrlABAT, 0)
}

// readStatusTXREQBit maps TX buffer ordinal to its bit in the READ-STATUS
// byte (bit2=TXREQ0, bit4=TXREQ1, bit6=TXREQ2).
var readStatusTXREQBit = [3]byte{0x04, 0x10, 0x40}

// SendAny is the internal fast-path convenience layered above Send (§4
// supplement): it picks the first free TX buffer via the READ-STATUS
// opcode and loads/requests it via the LOAD-TXBn/RTS-TXBn fast opcodes,
// rather than the generic write_registers+bit_modify sequence. It never
// replaces Send's mandated {0,1,2} fixed-priority ordering — callers that
// need that ordering must use Send. A DLC exceeding the 8-byte maximum is
// rejected with ErrInvalidDLC before any buffer is chosen.
func (h *RunHandle) SendAny(frame TxFrame) (buf int, err error) {
	if frame.DLC > dlcMax {
		return -1, ErrInvalidDLC
	}

	c := h.c
	status, err := c.spi.readStatus()
	if err != nil {
		return -1, err
	}

	buf = -1
	for i := 0; i < 3; i++ {
		if status&readStatusTXREQBit[i] == 0 {
			buf = i
			break
		}
	}
	if buf == -1 {
		return -1, ErrNoBufferSelected
	}

	sidh, sidl, eid8, eid0 := encodeID(frame.ID, frame.FrameType.extended())
	dlcByte := encodeDLC(frame.DLC, frame.FrameType.remote())

	burst := []byte{sidh, sidl, eid8, eid0, dlcByte}
	if !frame.FrameType.remote() {
		burst = append(burst, frame.Data[:frame.DLC]...)
	}

	if err := c.spi.loadTXBurst(buf, burst); err != nil {
		return -1, err
	}
	if err := c.spi.requestToSend(buf); err != nil {
		return -1, err
	}

	wait := worstCaseOnBusUS(frame.FrameType, frame.DLC, c.cfg.Baud)
	c.spi.delay.DelayMicroseconds(wait)
	return buf, nil
}
