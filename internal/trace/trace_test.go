//go:build trace

/*
 * eccdrv - [k]P execution trace engine.
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

package trace

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwsec/eccdrv/internal/mmio"
	"github.com/hwsec/eccdrv/internal/ucode"
)

func fakePort(t *testing.T) (*mmio.Port, func()) {
	t.Helper()
	buf := make([]byte, 64*mmio.Stride)
	base := uintptr(unsafe.Pointer(&buf[0]))
	return mmio.NewPort(base, mmio.Wire32), func() { runtime.KeepAlive(buf) }
}

func TestRunCapturesCoordinatesAtEveryLandmark(t *testing.T) {
	port, keepAlive := fakePort(t)
	defer keepAlive()

	// Hold the FSM halted for the whole run so every landmark's capture
	// sees DEBUG_HALTED.
	port.Set(mmio.RegDebugStatus, mmio.DbgHalted.SetBit(0, true))

	buf := NewBuffer(20)
	calls := 0
	err := Run(port, buf, 256, 32, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, buf.Records, len(landmarks))

	for _, rec := range buf.Records {
		assert.NotEmpty(t, rec.R0X)
		assert.NotEmpty(t, rec.R0Y)
		assert.NotEmpty(t, rec.R1X)
		assert.NotEmpty(t, rec.R1Y)
		assert.NotEmpty(t, rec.Z)
	}
}

func TestRunOnlyPopulatesRandomnessAtDrawLandmarks(t *testing.T) {
	port, keepAlive := fakePort(t)
	defer keepAlive()
	port.Set(mmio.RegDebugStatus, mmio.DbgHalted.SetBit(0, true))

	buf := NewBuffer(20)
	require.NoError(t, Run(port, buf, 256, 32, func() error { return nil }))

	byLandmark := map[string]Record{}
	for _, rec := range buf.Records {
		byLandmark[rec.Landmark] = rec
	}

	assert.NotEmpty(t, byLandmark[ucode.LAlphaDraw].Randomness)
	assert.NotEmpty(t, byLandmark[ucode.LPhi0Draw].Randomness)
	assert.NotEmpty(t, byLandmark[ucode.LPhi1Draw].Randomness)
	assert.NotEmpty(t, byLandmark[ucode.LLambdaDraw].Randomness)
	assert.Empty(t, byLandmark[ucode.LInputCheck].Randomness)
}

func TestBufferStopsAppendingPastCapacityAndFlagsOverflow(t *testing.T) {
	buf := NewBuffer(1)
	buf.append(Record{Landmark: "a"})
	buf.append(Record{Landmark: "b"})
	assert.Len(t, buf.Records, 1)
	assert.True(t, buf.Overflow)
}
