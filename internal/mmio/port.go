/*
 * eccdrv - Word-aligned MMIO register access.
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

// Package mmio provides word-aligned volatile access to the IP's register
// window, and the typed bit-field descriptors used to pack and unpack them.
package mmio

import "sync/atomic"

// Wire is the physical bus word width the IP speaks. Everything above this
// package normalizes to a logical 32-bit register regardless of Wire.
type Wire int

const (
	Wire32 Wire = 32
	Wire64 Wire = 64
)

// Stride is the byte distance between consecutive register offsets.
// Addresses are 64-bit aligned; Offset divides by Stride.
const Stride = 8

// Port is a handle over one contiguous MMIO register window. Base is the
// pointer the platform layer hands back from MapECCBase; it is never
// acquired by this package.
type Port struct {
	base uintptr
	wire Wire
}

// NewPort wraps a base address already mapped by the platform layer.
func NewPort(base uintptr, wire Wire) *Port {
	return &Port{base: base, wire: wire}
}

// Offset returns the register index for a byte address, per the 64-bit
// stride rule in spec §4.1.
func Offset(addr uint32) uint32 {
	return addr / Stride
}

// Get reads one logical 32-bit register. When the bus is 64-bit wide, the
// low 32 bits of the 64-bit fetch are the logical value; the upper 32 bits
// are reserved by the IP and discarded here.
func (p *Port) Get(addr uint32) uint32 {
	idx := Offset(addr)
	if p.wire == Wire64 {
		word := loadWord64(p.base, idx)
		return uint32(word)
	}
	return loadWord32(p.base, idx)
}

// Set writes one logical 32-bit register. On a 64-bit bus the payload is
// placed in the upper half of the 64-bit write and a byte-swapped copy is
// placed in the lower half, per spec §4.1 — the IP's 64-bit write path
// expects the 32-bit word duplicated and swapped across the two halves.
func (p *Port) Set(addr uint32, value uint32) {
	idx := Offset(addr)
	if p.wire == Wire64 {
		lo := swap32(value)
		word := (uint64(value) << 32) | uint64(lo)
		storeWord64(p.base, idx, word)
		return
	}
	storeWord32(p.base, idx, value)
}

// swap32 reverses the four bytes of a 32-bit word (endianness reversal at
// the 32-bit-word level, spec §4.1) — byte 0 swaps with byte 3 and byte 1
// with byte 2, not just the two 16-bit halves.
func swap32(v uint32) uint32 {
	return (v&0xff)<<24 | (v&0xff00)<<8 | (v&0xff0000)>>8 | (v&0xff000000)>>24
}

// The four helpers below are the only place this package touches raw
// memory. They are written so the access is a single load/store of the
// full width with no surrounding arithmetic, matching the "no speculative
// reads or writes, no coalescing" requirement in spec §5. atomic.Load/Store
// on a pointer-derived value gives us single-word volatile semantics
// without pulling in unsafe-pointer games beyond what's unavoidable for
// MMIO in Go.
func loadWord32(base uintptr, idx uint32) uint32 {
	p := (*uint32)(wordAddr32(base, idx))
	return atomic.LoadUint32(p)
}

func storeWord32(base uintptr, idx uint32, v uint32) {
	p := (*uint32)(wordAddr32(base, idx))
	atomic.StoreUint32(p, v)
}

func loadWord64(base uintptr, idx uint32) uint64 {
	p := (*uint64)(wordAddr64(base, idx))
	return atomic.LoadUint64(p)
}

func storeWord64(base uintptr, idx uint32, v uint64) {
	p := (*uint64)(wordAddr64(base, idx))
	atomic.StoreUint64(p, v)
}
