package can

// MaskSelect is a selection bitmap over the two RX masks.
type MaskSelect byte

const (
	Mask0 MaskSelect = 1 << iota
	Mask1
)

// FilterSelect is a selection bitmap over the six RX filters.
type FilterSelect byte

const (
	Filter0 FilterSelect = 1 << iota
	Filter1
	Filter2
	Filter3
	Filter4
	Filter5
)

// MaskValue is one mask's 29-bit value, always matched as if extended
// (the controller masks SIDH/SIDL/EID8/EID0 uniformly).
type MaskValue struct {
	ID ID
}

// FilterValue is one filter's 29-bit value plus whether it gates extended
// identifiers.
type FilterValue struct {
	ID       ID
	Extended bool
}

// SetMasks writes the selected RX masks. Durable only while the chip is
// in configuration mode, which this method's receiver type guarantees
// (§9: mode preconditions enforced by type-state).
func (h *ConfigHandle) SetMasks(sel MaskSelect, values [2]MaskValue) error {
	for i := 0; i < 2; i++ {
		bit := MaskSelect(1 << uint(i))
		if sel&bit == 0 {
			continue
		}
		sidh, sidl, eid8, eid0 := encodeID(values[i].ID, true)
		if err := h.c.spi.writeRegisters(maskBaseAddr[i], []byte{sidh, sidl, eid8, eid0}); err != nil {
			return err
		}
	}
	return nil
}

// SetFilters writes the selected RX filters.
func (h *ConfigHandle) SetFilters(sel FilterSelect, values [6]FilterValue) error {
	for i := 0; i < 6; i++ {
		bit := FilterSelect(1 << uint(i))
		if sel&bit == 0 {
			continue
		}
		sidh, sidl, eid8, eid0 := encodeID(values[i].ID, values[i].Extended)
		if err := h.c.spi.writeRegisters(filterBaseAddr[i], []byte{sidh, sidl, eid8, eid0}); err != nil {
			return err
		}
	}
	return nil
}

// SetBitTiming reprograms CNF1/CNF2/CNF3 while in configuration mode.
func (h *ConfigHandle) SetBitTiming(baud BaudRate, sample SamplePoint, wakeup WakeUpFilter) error {
	return h.c.setBaudRate(baud, sample, wakeup)
}
