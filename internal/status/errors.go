/*
 * eccdrv - Error taxonomy.
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

// Package status polls the IP's composite status word, maps its error
// field to a discrete taxonomy, and acknowledges errors by writing the
// set bits back (spec §4.3, §7).
package status

import "fmt"

// ErrorBit is one positional flag in the 15-bit error field (spec §7).
type ErrorBit uint32

const (
	ErrInPtNotOnCurve ErrorBit = 1 << iota
	ErrOutPtNotOnCurve
	ErrComp
	ErrWRegFbd
	ErrRRegFbd
	ErrKPFbd
	ErrPopFbd
	ErrNNDyn
	ErrRdNbFbd
	ErrBln
	ErrUnknownReg
	ErrToken
	ErrShuffle
	ErrZRemask
	ErrNotEnoughRandomWK
)

var errorNames = map[ErrorBit]string{
	ErrInPtNotOnCurve:    "IN_PT_NOT_ON_CURVE",
	ErrOutPtNotOnCurve:   "OUT_PT_NOT_ON_CURVE",
	ErrComp:              "COMP",
	ErrWRegFbd:           "WREG_FBD",
	ErrRRegFbd:           "RREG_FBD",
	ErrKPFbd:             "KP_FBD",
	ErrPopFbd:            "POP_FBD",
	ErrNNDyn:             "NNDYN",
	ErrRdNbFbd:           "RDNB_FBD",
	ErrBln:               "BLN",
	ErrUnknownReg:        "UNKOWN_REG",
	ErrToken:             "TOKEN",
	ErrShuffle:           "SHUFFLE",
	ErrZRemask:           "ZREMASK",
	ErrNotEnoughRandomWK: "NOT_ENOUGH_RANDOM_WK",
}

func (e ErrorBit) String() string {
	if name, ok := errorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("ERR(0x%x)", uint32(e))
}

// Fault wraps the raw 15-bit error field read from the status register,
// decomposed into its set bits. A non-zero Fault is the single failure
// every public operation surfaces to the caller (spec §7).
type Fault struct {
	Raw uint32
}

func (f *Fault) Error() string {
	bits := f.Bits()
	if len(bits) == 0 {
		return "eccdrv: error (no bits set)"
	}
	s := "eccdrv: "
	for i, b := range bits {
		if i > 0 {
			s += "|"
		}
		s += b.String()
	}
	return s
}

// Bits returns the set error bits in ascending order.
func (f *Fault) Bits() []ErrorBit {
	var bits []ErrorBit
	for bit := ErrorBit(1); bit != 0 && bit <= ErrNotEnoughRandomWK; bit <<= 1 {
		if f.Raw&uint32(bit) != 0 {
			bits = append(bits, bit)
		}
	}
	return bits
}

// ErrTimeout is returned by the bounded-watchdog raw-FIFO fill wait
// (clockdiag.DrainRawFIFO) instead of spinning forever, per spec §5.
var ErrTimeout = fmt.Errorf("eccdrv: watchdog timeout")
