package can

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendStdDataWritesTXB0(t *testing.T) {
	c, chip := newTestController(t)
	h, err := c.Enter(ModeLoopback)
	require.NoError(t, err)

	frame := TxFrame{
		FrameType: StdData,
		DLC:       2,
		ID:        StandardID(0x555),
		Data:      [8]byte{0x0D, 0xD0},
	}
	desc := TxDescriptor{Select: TXB0, Buffers: [3]TxFrame{frame, {}, {}}}

	err = h.Send(desc)
	require.NoError(t, err)

	sidh, sidl, _, _ := encodeID(StandardID(0x555), false)
	require.Equal(t, sidh, chip.regs[txSidhAddr[0]])
	require.Equal(t, sidl, chip.regs[txSidhAddr[0]+1])
	require.Equal(t, byte(2), chip.regs[txSidhAddr[0]+4]&dlcMask)
	require.Equal(t, byte(0x0D), chip.regs[txSidhAddr[0]+5])
	require.Equal(t, byte(0xD0), chip.regs[txSidhAddr[0]+6])
	require.NotZero(t, chip.regs[txCtrlAddr[0]]&txCtrlTXREQ)
}

// txreqRecorder wraps fakeChip and records, in call order, the TXBnCTRL
// address of every bit-modify that sets TXREQ.
type txreqRecorder struct {
	*fakeChip
	order []byte
}

func (r *txreqRecorder) Transfer(data []byte) ([]byte, error) {
	if len(data) == 4 && data[0] == opBitModify && data[2] == txCtrlTXREQ && data[3] == txCtrlTXREQ {
		r.order = append(r.order, data[1])
	}
	return r.fakeChip.Transfer(data)
}

func TestSendFixedPriorityOrder(t *testing.T) {
	rec := &txreqRecorder{fakeChip: newFakeChip()}
	c, err := Init(Config{Transport: TransportSPI0, Baud: Baud500k, Mode: ModeNormal}, TransportRegistry{TransportSPI0: rec}, &fakeDelayer{})
	require.NoError(t, err)
	h, err := c.Enter(ModeLoopback)
	require.NoError(t, err)

	desc := TxDescriptor{
		Select: TXB0 | TXB1 | TXB2,
		Buffers: [3]TxFrame{
			{FrameType: StdRemote, DLC: 0, ID: StandardID(1)},
			{FrameType: StdRemote, DLC: 0, ID: StandardID(2)},
			{FrameType: StdRemote, DLC: 0, ID: StandardID(3)},
		},
	}
	require.NoError(t, h.Send(desc))
	require.Equal(t, []byte{txCtrlAddr[0], txCtrlAddr[1], txCtrlAddr[2]}, rec.order)
}

func TestTxStatusDecode(t *testing.T) {
	c, chip := newTestController(t)
	h, err := c.Enter(ModeLoopback)
	require.NoError(t, err)

	cases := []struct {
		name string
		ctrl byte
		want TxState
	}{
		{"aborted", txCtrlABTF, Aborted},
		{"bus error and lost arbitration", txCtrlTXREQ | txCtrlTXERR | txCtrlMLOA, BusErrorAndLostArbitration},
		{"bus error", txCtrlTXREQ | txCtrlTXERR, BusError},
		{"lost arbitration", txCtrlTXREQ | txCtrlMLOA, LostArbitration},
		{"pending", txCtrlTXREQ, Pending},
		{"success", 0, Success},
	}

	for _, c2 := range cases {
		chip.regs[txCtrlAddr[0]] = c2.ctrl
		got, err := h.TxStatus(0)
		require.NoErrorf(t, err, c2.name)
		require.Equalf(t, c2.want, got, c2.name)
	}
}

func TestAbortClearsTXREQ(t *testing.T) {
	c, chip := newTestController(t)
	h, err := c.Enter(ModeLoopback)
	require.NoError(t, err)

	chip.regs[txCtrlAddr[0]] = txCtrlTXREQ
	chip.regs[txCtrlAddr[1]] = txCtrlTXREQ

	require.NoError(t, h.Abort(TXB0))
	require.Zero(t, chip.regs[txCtrlAddr[0]]&txCtrlTXREQ)
	require.NotZero(t, chip.regs[txCtrlAddr[1]]&txCtrlTXREQ)
}

func TestAbortAllSetsThenClearsABAT(t *testing.T) {
	c, chip := newTestController(t)
	h, err := c.Enter(ModeLoopback)
	require.NoError(t, err)

	require.NoError(t, h.AbortAll())
	require.Zero(t, chip.regs[regCANCTRL]&canctrlABAT)
}

func TestSendAnyPicksFreeBuffer(t *testing.T) {
	c, chip := newTestController(t)
	h, err := c.Enter(ModeLoopback)
	require.NoError(t, err)

	chip.regs[txCtrlAddr[0]] = txCtrlTXREQ // buffer 0 busy

	buf, err := h.SendAny(TxFrame{FrameType: StdData, DLC: 1, ID: StandardID(0x10), Data: [8]byte{0xAB}})
	require.NoError(t, err)
	require.Equal(t, 1, buf)
	require.Equal(t, byte(0xAB), chip.regs[txSidhAddr[1]+5])
}

func TestSendInvalidDLCReturnsError(t *testing.T) {
	c, chip := newTestController(t)
	h, err := c.Enter(ModeLoopback)
	require.NoError(t, err)

	desc := TxDescriptor{
		Select: TXB0,
		Buffers: [3]TxFrame{
			{FrameType: StdData, DLC: 9, ID: StandardID(1)},
		},
	}
	err = h.Send(desc)
	require.ErrorIs(t, err, ErrInvalidDLC)
	require.Zero(t, chip.regs[txCtrlAddr[0]]&txCtrlTXREQ)
}

func TestSendAnyInvalidDLCReturnsError(t *testing.T) {
	c, _ := newTestController(t)
	h, err := c.Enter(ModeLoopback)
	require.NoError(t, err)

	_, err = h.SendAny(TxFrame{FrameType: StdData, DLC: 9, ID: StandardID(1)})
	require.ErrorIs(t, err, ErrInvalidDLC)
}

func TestSendAnyErrorsWhenAllBuffersBusy(t *testing.T) {
	c, chip := newTestController(t)
	h, err := c.Enter(ModeLoopback)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		chip.regs[txCtrlAddr[i]] = txCtrlTXREQ
	}

	_, err = h.SendAny(TxFrame{FrameType: StdRemote, ID: StandardID(1)})
	require.ErrorIs(t, err, ErrNoBufferSelected)
}
