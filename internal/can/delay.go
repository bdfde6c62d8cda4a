package can

import "time"

// Delayer is the microsecond-delay service the driver consumes (§6). It is
// a blocking, wall-clock-accurate (within ±10%) external collaborator —
// GPIO/clock-tree bring-up and any hardware timer backing it live outside
// this package.
type Delayer interface {
	DelayMicroseconds(us uint32)
}

// RealDelayer blocks using the host's monotonic clock. It is the Delayer
// used outside of tests.
type RealDelayer struct{}

func (RealDelayer) DelayMicroseconds(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}
