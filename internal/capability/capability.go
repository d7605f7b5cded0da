/*
 * eccdrv - Capability probe.
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

// Package capability reads and caches the IP's static capability bits.
package capability

import "github.com/hwsec/eccdrv/internal/mmio"

// Caps is an immutable snapshot of the build's static capability bits,
// read once by Probe (spec §3: "immutable for the lifetime of the handle").
type Caps struct {
	SecureBuild     bool
	DynamicNN       bool
	ShuffleSupport  bool
	Wire64          bool
	NNMax           uint32
	OpcodeCount     uint32
	OpcodeWidth     uint32
	RawFIFOBits     uint32
	IRNShuffleWidth uint32

	// Capability2 and DebugCap3 are the second capability register and
	// third debug-capability register spec §4.2 requires Probe to read
	// once along with the others. Neither currently carries a named bit
	// field; the raw words are kept so a future build that defines bits
	// there doesn't need a new probe pass.
	Capability2 uint32
	DebugCap3   uint32
}

// debug capability register 1/2 fields, local to this package since no
// other component needs the raw layout.
var (
	dbgOpcodeCount     = mmio.NewField(0, 16)
	dbgOpcodeWidth     = mmio.NewField(16, 8)
	dbgRawFIFOBits     = mmio.NewField(0, 16)
	dbgIRNShuffleWidth = mmio.NewField(16, 8)
)

// Probe reads the two capability registers and the debug-capability
// registers once. Callers should cache the result on the device handle;
// Probe itself does no caching.
func Probe(port *mmio.Port) Caps {
	cap1 := port.Get(mmio.RegCapability1)

	var c Caps
	c.SecureBuild = !mmio.CapDebugVsProd.Bit(cap1)
	c.ShuffleSupport = mmio.CapShuffle.Bit(cap1)
	c.DynamicNN = mmio.CapDynamicNN.Bit(cap1)
	c.Wire64 = mmio.CapWire64.Bit(cap1)
	c.NNMax = mmio.CapNNMax.Get(cap1)

	dbg1 := port.Get(mmio.RegDebugCap1)
	c.OpcodeCount = dbgOpcodeCount.Get(dbg1)
	c.OpcodeWidth = dbgOpcodeWidth.Get(dbg1)

	dbg2 := port.Get(mmio.RegDebugCap2)
	c.RawFIFOBits = dbgRawFIFOBits.Get(dbg2)
	c.IRNShuffleWidth = dbgIRNShuffleWidth.Get(dbg2)

	c.Capability2 = port.Get(mmio.RegCapability2)
	c.DebugCap3 = port.Get(mmio.RegDebugCap3)

	return c
}

// LimbStride returns w = ceil((nn+4)/ww), the number of limbs the IP uses
// to store one large number of the given bit size.
func LimbStride(nn, ww uint32) uint32 {
	return ceilDiv(nn+4, ww)
}

// MemoryStride returns n = next power of two >= LimbStride(nn, ww), the
// per-large-number memory address stride used by direct limb access
// (spec §4.2, §4.9).
func MemoryStride(nn, ww uint32) uint32 {
	return NextPow2(LimbStride(nn, ww))
}

// NextPow2 returns the smallest power of two >= v (spec §4.2's "next
// power of two" bound, also used to size opcode memory for patching).
func NextPow2(v uint32) uint32 {
	return nextPow2(v)
}

func ceilDiv(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

func nextPow2(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
