package can

// This file implements §4.E: the bit-timing planner. For each supported
// nominal baud rate it emits the {CNF1, CNF2, CNF3} byte triple for an
// 8 MHz controller oscillator. The segment lengths below are fixed table
// entries, not derived at runtime — the driver never computes a timing
// solution, it only looks one up.

// BaudRate is one of the five nominal bit rates the planner supports.
type BaudRate int

const (
	Baud50k BaudRate = iota
	Baud100k
	Baud125k
	Baud250k
	Baud500k
)

type bitTiming struct {
	brp      byte // prescaler field, TQ = 2*(BRP+1)/f_osc
	propSeg  byte // length in TQ
	ps1      byte
	ps2      byte
	sjw      byte
}

var timingTable = map[BaudRate]bitTiming{
	Baud500k: {brp: 0, propSeg: 2, ps1: 2, ps2: 3, sjw: 1},
	Baud250k: {brp: 0, propSeg: 4, ps1: 5, ps2: 6, sjw: 1},
	Baud125k: {brp: 1, propSeg: 3, ps1: 6, ps2: 6, sjw: 1},
	Baud100k: {brp: 1, propSeg: 6, ps1: 6, ps2: 7, sjw: 1},
	Baud50k:  {brp: 3, propSeg: 6, ps1: 6, ps2: 7, sjw: 1},
}

// SamplePoint selects the CNF2 SAM bit.
type SamplePoint int

const (
	SampleOnce SamplePoint = iota
	SampleThriceTimes
)

const (
	cnf2BTLMODE byte = 0x80
	cnf2SAM     byte = 0x40
	cnf3WAKFIL  byte = 0x40
)

// WakeUpFilter selects whether CNF3's WAKFIL bit is set.
type WakeUpFilter int

const (
	WakeUpFilterDisabled WakeUpFilter = iota
	WakeUpFilterEnabled
)

// planBitTiming computes the CNF1/CNF2/CNF3 register values for the given
// baud rate, sample-point, and wake-up-filter selections. ok is false for
// an unsupported baud rate.
func planBitTiming(baud BaudRate, sample SamplePoint, wakeup WakeUpFilter) (cnf1, cnf2, cnf3 byte, ok bool) {
	t, found := timingTable[baud]
	if !found {
		return 0, 0, 0, false
	}

	cnf1 = (t.sjw-1)<<6 | (t.brp & 0x3F)

	cnf2 = cnf2BTLMODE | (t.ps1-1)<<3 | (t.propSeg - 1)
	if sample == SampleThriceTimes {
		cnf2 |= cnf2SAM
	}

	cnf3 = t.ps2 - 1
	if wakeup == WakeUpFilterEnabled {
		cnf3 |= cnf3WAKFIL
	}

	return cnf1, cnf2, cnf3, true
}
