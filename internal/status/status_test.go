package status

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/hwsec/eccdrv/internal/mmio"
)

func fakePort(t *testing.T) (*mmio.Port, func()) {
	t.Helper()
	buf := make([]byte, 8*mmio.Stride)
	port := mmio.NewPort(uintptr(unsafe.Pointer(&buf[0])), mmio.Wire32)
	return port, func() { runtime.KeepAlive(buf) }
}

func TestBusyWaitReturnsWhenBusyClear(t *testing.T) {
	port, keepAlive := fakePort(t)
	defer keepAlive()

	BusyWait(port)
}

func TestReasonDecodesHighestPriorityBit(t *testing.T) {
	port, keepAlive := fakePort(t)
	defer keepAlive()

	port.Set(mmio.RegStatus, mmio.StKP.SetBit(0, true))
	assert.Equal(t, BusyKP, Reason(port))

	port.Set(mmio.RegStatus, mmio.StTokenGen.SetBit(0, true))
	assert.Equal(t, BusyTokenGen, Reason(port))

	port.Set(mmio.RegStatus, 0)
	assert.Equal(t, BusyNone, Reason(port))
}

func TestCheckErrorNilWhenClear(t *testing.T) {
	port, keepAlive := fakePort(t)
	defer keepAlive()

	assert.Nil(t, CheckError(port))
}

func TestCheckErrorAcknowledgesAndReturnsFault(t *testing.T) {
	port, keepAlive := fakePort(t)
	defer keepAlive()

	raw := uint32(ErrBln | ErrToken)
	port.Set(mmio.RegStatus, mmio.StError.Set(0, raw))

	f := CheckError(port)
	if assert.NotNil(t, f) {
		assert.Equal(t, raw, f.Raw)
		assert.Contains(t, f.Bits(), ErrBln)
		assert.Contains(t, f.Bits(), ErrToken)
	}
	assert.Equal(t, mmio.StError.Set(0, raw), port.Get(mmio.RegErrorAck))
}

func TestFaultErrorMessageListsBits(t *testing.T) {
	f := &Fault{Raw: uint32(ErrBln)}
	assert.Contains(t, f.Error(), "BLN")
}

func TestFaultErrorEmptyWhenNoBitsSet(t *testing.T) {
	f := &Fault{Raw: 0}
	assert.Equal(t, "eccdrv: error (no bits set)", f.Error())
}
