package can

// This file implements §4.H: the frame receiver, including the rollover
// data-source quirk flagged in the spec's Open Questions. It is preserved
// deliberately: RXB0 rollover reads spilled data from RXB1D0, but RXB1's
// own reads begin at RXB1D1, not RXB1D0. This asymmetry looks like a bug
// but is not corrected here per the source's documented intent.

const (
	rxCtrlFILHITMask0 byte = 0x01 // RXB0CTRL FILHIT: bit 0
	rxCtrlFILHITMask1 byte = 0x07 // RXB1CTRL FILHIT: bits 2:0
	rxCtrlFILHITRollThreshold byte = 6
)

// Read reads each selected RX buffer's control/ID/DLC/data registers and
// decodes it into an RxFrame. The driver does not clear the RX-full flag;
// callers must use the interrupt facade for that.
func (h *RunHandle) Read(sel RxBufferSelect) ([2]*RxFrame, error) {
	var out [2]*RxFrame
	for i := 0; i < 2; i++ {
		bit := RxBufferSelect(1 << uint(i))
		if sel&bit == 0 {
			continue
		}
		f, err := h.c.readOne(i)
		if err != nil {
			return out, err
		}
		out[i] = f
	}
	return out, nil
}

func (c *Controller) readOne(buf int) (*RxFrame, error) {
	ctrlByte, err := c.spi.readRegisters(rxCtrlAddr[buf], 1)
	if err != nil {
		return nil, err
	}
	ctrl := ctrlByte[0]

	// READ-RXBn starts at SIDH, skipping CTRL — a one-opcode substitute
	// for the generic read_registers(SIDH, 5) the rest of this method
	// would otherwise need.
	hdr, err := c.spi.readRXBurst(buf, 5)
	if err != nil {
		return nil, err
	}
	sidh, sidl, eid8, eid0, dlcByte := hdr[0], hdr[1], hdr[2], hdr[3], hdr[4]

	id, extended := decodeID(sidh, sidl, eid8, eid0)
	dlc := dlcByte & dlcMask

	var remote bool
	var filhit byte
	var rollover RollingStatus

	if buf == 0 {
		filhit = ctrl & rxCtrlFILHITMask0
		if extended {
			remote = dlcByte&dlcRTR != 0
		} else {
			remote = sidl&sidlSRR != 0
		}

		compositeFilhit := ctrl & 0x07 // BUKT|BUKT1|FILHIT0 composite field
		if !remote && compositeFilhit >= rxCtrlFILHITRollThreshold {
			rollover = RolloverOccurred
		}
	} else {
		filhit = ctrl & rxCtrlFILHITMask1
		if extended {
			remote = dlcByte&dlcRTR != 0
		} else {
			remote = sidl&sidlSRR != 0
		}
	}

	frame := &RxFrame{
		DLC:                 dlc,
		ID:                  id,
		AcceptanceFilterHit: filhit,
		Rollover:            rollover,
	}
	frame.FrameType = frameTypeFor(extended, remote)

	if !remote {
		n := int(dlc)
		if n > dlcMax {
			n = dlcMax
		}

		var dataAddr byte
		switch {
		case buf == 0 && rollover == RolloverOccurred:
			dataAddr = regRXB1D0
		case buf == 0:
			dataAddr = rxSidhAddr[0] + 5
		default: // buf == 1: begins at RXB1D1, not RXB1D0 — preserved quirk
			dataAddr = regRXB1D1
		}

		data, err := c.spi.readRegisters(dataAddr, n)
		if err != nil {
			return nil, err
		}
		copy(frame.Data[:n], data)
	}

	return frame, nil
}

func frameTypeFor(extended, remote bool) FrameType {
	switch {
	case extended && remote:
		return ExtRemote
	case extended:
		return ExtData
	case remote:
		return StdRemote
	default:
		return StdData
	}
}
