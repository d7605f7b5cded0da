package setup

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwsec/eccdrv/internal/mmio"
)

type fakePlatform struct {
	base uintptr
	err  error
	buf  []byte
}

func (f *fakePlatform) MapECCBase() (uintptr, error) {
	return f.base, f.err
}

func newFakePlatform(t *testing.T) (*fakePlatform, func()) {
	t.Helper()
	buf := make([]byte, 64*mmio.Stride)
	base := uintptr(unsafe.Pointer(&buf[0]))
	return &fakePlatform{base: base, buf: buf}, func() { runtime.KeepAlive(buf) }
}

func TestEnsureReadyMarksReady(t *testing.T) {
	plat, keepAlive := newFakePlatform(t)
	defer keepAlive()

	var d Device
	err := d.EnsureReady(plat)
	require.NoError(t, err)
	assert.True(t, d.Ready())
	assert.NotNil(t, d.Port)
}

func TestEnsureReadyIsIdempotent(t *testing.T) {
	plat, keepAlive := newFakePlatform(t)
	defer keepAlive()

	var d Device
	require.NoError(t, d.EnsureReady(plat))
	firstPort := d.Port

	require.NoError(t, d.EnsureReady(plat))
	assert.Same(t, firstPort, d.Port)
}

func TestEnsureReadyPropagatesPlatformError(t *testing.T) {
	plat := &fakePlatform{err: errors.New("no such device")}

	var d Device
	err := d.EnsureReady(plat)
	assert.Error(t, err)
	assert.False(t, d.Ready())
}

func TestEnsureReadyConcurrentFirstUse(t *testing.T) {
	plat, keepAlive := newFakePlatform(t)
	defer keepAlive()

	var d Device
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = d.EnsureReady(plat)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.True(t, d.Ready())
}
