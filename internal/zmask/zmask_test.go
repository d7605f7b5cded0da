//go:build zmask

/*
 * eccdrv - Z-mask (lambda) injection.
 *
 * Copyright 2026, eccdrv contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package zmask

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwsec/eccdrv/internal/capability"
	"github.com/hwsec/eccdrv/internal/mmio"
)

func fakePort(t *testing.T) (*mmio.Port, func()) {
	t.Helper()
	buf := make([]byte, 64*mmio.Stride)
	base := uintptr(unsafe.Pointer(&buf[0]))
	return mmio.NewPort(base, mmio.Wire32), func() { runtime.KeepAlive(buf) }
}

func haltInSetup(port *mmio.Port) {
	dbg := mmio.DbgHalted.SetBit(0, true)
	dbg = mmio.DbgState.Set(dbg, setupState)
	port.Set(mmio.RegDebugStatus, dbg)
}

func TestInjectSucceedsWhenHaltedInSetupState(t *testing.T) {
	port, keepAlive := fakePort(t)
	defer keepAlive()

	err := Inject(port, capability.Caps{}, 256, 32, []uint32{1, 2, 3}, func() error {
		haltInSetup(port)
		return nil
	})
	require.NoError(t, err)
}

func TestInjectRejectsWrongMicrocodeState(t *testing.T) {
	port, keepAlive := fakePort(t)
	defer keepAlive()

	err := Inject(port, capability.Caps{}, 256, 32, []uint32{1}, func() error {
		dbg := mmio.DbgHalted.SetBit(0, true)
		dbg = mmio.DbgState.Set(dbg, setupState+1)
		port.Set(mmio.RegDebugStatus, dbg)
		return nil
	})
	assert.Error(t, err)
}

func TestInjectRejectsNotHalted(t *testing.T) {
	port, keepAlive := fakePort(t)
	defer keepAlive()

	err := Inject(port, capability.Caps{}, 256, 32, []uint32{1}, func() error {
		return nil
	})
	assert.Error(t, err)
}
