/*
 * eccdrv - Big-number byte <-> IP-wire codec.
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

// Package bignum transfers large numbers between host byte arrays and the
// IP's per-limb wire format (spec §3, §4.4, §9).
//
// Logical values are big-endian byte arrays. On the wire, the least
// significant wire-word goes first; within a word, bytes are placed from
// LSB to MSB as they are consumed from the byte array's tail toward its
// head. This file implements and is tested against that rule in
// isolation, before anything wires it to MMIO (spec §9).
package bignum

import (
	"errors"

	"github.com/hwsec/eccdrv/internal/mmio"
	"github.com/hwsec/eccdrv/internal/regwindow"
	"github.com/hwsec/eccdrv/internal/status"
)

// WordSize is the byte width of one wire-word transfer (spec §4.4: the
// push/pop count is ceil(ceil(nn/8)/sizeof(wire-word)), and mmio.Port
// always presents a logical 32-bit register regardless of physical bus
// width).
const WordSize = 4

// ErrTooLarge is returned when the input byte array exceeds ceil(nn/8).
var ErrTooLarge = errors.New("eccdrv: big number exceeds current NN")

// NNBytes returns ceil(nn/8), the byte length of a full-size big number.
func NNBytes(nn uint32) uint32 {
	return (nn + 7) / 8
}

// numWords returns the number of wire-word transfers for the given NN.
func numWords(nn uint32) int {
	nb := NNBytes(nn)
	return int((nb + WordSize - 1) / WordSize)
}

// ToWords packs a big-endian byte array (already verified to fit within
// nnBytes) into the wire's word sequence, word 0 being least significant.
func ToWords(value []byte, nn uint32) []uint32 {
	nb := int(NNBytes(nn))
	n := numWords(nn)
	words := make([]uint32, n)

	for w := 0; w < n; w++ {
		var word uint32
		for b := 0; b < WordSize; b++ {
			byteIdxFromEnd := w*WordSize + b
			pos := len(value) - 1 - byteIdxFromEnd
			var v byte
			// Positions at or beyond nb bytes from the end (i.e. past the
			// logical big-number width) never contribute; positions
			// before the start of value are implicit leading zero pad.
			if byteIdxFromEnd < nb && pos >= 0 {
				v = value[pos]
			}
			word |= uint32(v) << (8 * b)
		}
		words[w] = word
	}
	return words
}

// FromWords decomposes a wire-word sequence back into a big-endian byte
// array of length ceil(nn/8), word 0 being least significant.
func FromWords(words []uint32, nn uint32) []byte {
	nb := int(NNBytes(nn))
	out := make([]byte, nb)

	for w, word := range words {
		for b := 0; b < WordSize; b++ {
			byteIdxFromEnd := w*WordSize + b
			pos := nb - 1 - byteIdxFromEnd
			if pos < 0 {
				continue
			}
			out[pos] = byte(word >> (8 * b))
		}
	}
	return out
}

// Write transfers value into the IP's slot for the given current NN
// (spec §4.4). For SlotScalar it waits for scalar-mask randomness
// readiness before selecting the window, per spec §4.3/§4.4. The size
// bound is enforced host-side, before any register is touched.
func Write(port *mmio.Port, slot regwindow.Slot, value []byte, nn uint32) error {
	if uint32(len(value)) > NNBytes(nn) {
		return ErrTooLarge
	}

	if slot == regwindow.SlotScalar {
		status.EnoughWkRandomWait(port)
	}

	regwindow.Select(port, slot, regwindow.DirWrite)

	for _, w := range ToWords(value, nn) {
		regwindow.PushWord(port, w)
	}

	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return f
	}
	return nil
}

// Read transfers the IP's slot contents for the given current NN into a
// freshly allocated ceil(nn/8)-byte big-endian buffer (spec §4.4).
func Read(port *mmio.Port, slot regwindow.Slot, nn uint32) ([]byte, error) {
	regwindow.Select(port, slot, regwindow.DirRead)

	words := make([]uint32, numWords(nn))
	for i := range words {
		words[i] = regwindow.PopWord(port)
	}

	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return nil, f
	}
	return FromWords(words, nn), nil
}
