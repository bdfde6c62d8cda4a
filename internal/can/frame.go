package can

// FrameType enumerates the four frame shapes the controller's TX/RX buffers
// can carry.
type FrameType int

const (
	StdData FrameType = iota
	ExtData
	StdRemote
	ExtRemote
)

func (t FrameType) extended() bool {
	return t == ExtData || t == ExtRemote
}

func (t FrameType) remote() bool {
	return t == StdRemote || t == ExtRemote
}

// TxBufferSelect is a selection bitmap over the three TX buffers.
type TxBufferSelect byte

const (
	TXB0 TxBufferSelect = 1 << iota
	TXB1
	TXB2
)

// RxBufferSelect is a selection bitmap over the two RX buffers.
type RxBufferSelect byte

const (
	RXB0 RxBufferSelect = 1 << iota
	RXB1
)

// TxFrame describes one outgoing frame bound for a single TX buffer.
type TxFrame struct {
	FrameType FrameType
	DLC       uint8
	ID        ID
	Data      [8]byte // only Data[:DLC] is meaningful; ignored for remote frames
}

// TxDescriptor selects one or more TX buffers and the frame queued in each.
// Buffers not set in Select are left untouched by Send.
type TxDescriptor struct {
	Select  TxBufferSelect
	Buffers [3]TxFrame // indexed by buffer ordinal 0,1,2
}

// RollingStatus reports whether an RXB0 read rolled over into RXB1's data
// registers (§4.H); it is meaningless for RXB1.
type RollingStatus int

const (
	RolloverNotOccurred RollingStatus = iota
	RolloverOccurred
)

// RxFrame is the decoded content of one RX buffer read.
type RxFrame struct {
	FrameType           FrameType
	DLC                 uint8
	ID                  ID
	Data                [8]byte
	AcceptanceFilterHit uint8
	Rollover            RollingStatus
}

// TxState is the decoded transmit status of one TX buffer.
type TxState int

const (
	Pending TxState = iota
	LostArbitration
	BusError
	BusErrorAndLostArbitration
	Aborted
	Success
)
