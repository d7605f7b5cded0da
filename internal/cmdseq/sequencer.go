/*
 * eccdrv - Command sequencer.
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

// Package cmdseq marshals one point operation: it preserves and restores
// the R0/R1 is-null flags around operand writes, writes the operands,
// issues the command bit, and collects whatever result the operation
// produces (spec §4.7).
package cmdseq

import (
	"github.com/hwsec/eccdrv/internal/bignum"
	"github.com/hwsec/eccdrv/internal/mmio"
	"github.com/hwsec/eccdrv/internal/regwindow"
	"github.com/hwsec/eccdrv/internal/status"
)

// Op identifies one IP point operation.
type Op int

const (
	OpADD Op = iota
	OpDBL
	OpNEG
	OpCHK
	OpEQU
	OpOPP
	OpKP
)

var opField = map[Op]mmio.Field{
	OpKP:  mmio.CtlKP,
	OpADD: mmio.CtlADD,
	OpDBL: mmio.CtlDBL,
	OpCHK: mmio.CtlCHK,
	OpNEG: mmio.CtlNEG,
	OpEQU: mmio.CtlEQU,
	OpOPP: mmio.CtlOPP,
}

// Operands carries whichever operand slots an operation needs. A nil
// slice means "leave that slot untouched". R0Null/R1Null are always
// honored (re-asserted after any operand write), independent of whether
// the corresponding coordinates were written, so the sequence of MMIO
// accesses never depends on the flag values themselves (spec §5).
type Operands struct {
	R0X, R0Y []byte
	R1X, R1Y []byte
	R0Null   bool
	R1Null   bool
}

// Result carries whatever a completed operation yields.
type Result struct {
	Yes bool
	R1X []byte
	R1Y []byte
}

// Execute runs op to completion against the given operands, at the
// given current NN (bit size). Callers that need trace or Z-mask
// injection wrap Execute rather than forking its logic — the signature
// never changes based on those optional features (spec §9).
func Execute(port *mmio.Port, nn uint32, op Op, in Operands) (Result, error) {
	status.BusyWait(port)

	if err := writeOperand(port, regwindow.SlotR0X, in.R0X, nn); err != nil {
		return Result{}, err
	}
	if err := writeOperand(port, regwindow.SlotR0Y, in.R0Y, nn); err != nil {
		return Result{}, err
	}
	if err := writeOperand(port, regwindow.SlotR1X, in.R1X, nn); err != nil {
		return Result{}, err
	}
	if err := writeOperand(port, regwindow.SlotR1Y, in.R1Y, nn); err != nil {
		return Result{}, err
	}

	restoreNullFlags(port, in.R0Null, in.R1Null)

	field, ok := opField[op]
	if !ok {
		panic("cmdseq: unknown op")
	}
	ctl := field.SetBit(0, true)
	port.Set(mmio.RegControl, ctl)

	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return Result{}, f
	}

	return collectResult(port, nn, op)
}

func writeOperand(port *mmio.Port, slot regwindow.Slot, value []byte, nn uint32) error {
	if value == nil {
		return nil
	}
	return bignum.Write(port, slot, value, nn)
}

// restoreNullFlags always performs its single point-null register write,
// carrying both flags, regardless of what the flags' prior values were —
// the point of "preserve and restore" is that the same register write
// happens on every call (spec §5 timing side-channel policy).
func restoreNullFlags(port *mmio.Port, r0Null, r1Null bool) {
	word := mmio.PointNullR0.SetBit(0, r0Null)
	word = mmio.PointNullR1.SetBit(word, r1Null)
	port.Set(mmio.RegPointNull, word)
}

func collectResult(port *mmio.Port, nn uint32, op Op) (Result, error) {
	var res Result
	switch op {
	case OpCHK, OpEQU, OpOPP:
		st := port.Get(mmio.RegStatus)
		res.Yes = mmio.StYes.Bit(st)
	case OpNEG, OpDBL, OpADD, OpKP:
		x, err := bignum.Read(port, regwindow.SlotR1X, nn)
		if err != nil {
			return Result{}, err
		}
		y, err := bignum.Read(port, regwindow.SlotR1Y, nn)
		if err != nil {
			return Result{}, err
		}
		res.R1X, res.R1Y = x, y
	}
	return res, nil
}

// PointIsZero reads the current is-null flag for point idx (0 = R0, 1 =
// R1) from the composite status word.
func PointIsZero(port *mmio.Port, idx int) bool {
	st := port.Get(mmio.RegStatus)
	if idx == 0 {
		return mmio.StR0IsNull.Bit(st)
	}
	return mmio.StR1IsNull.Bit(st)
}

// SetPointNull explicitly asserts or clears the is-null flag for point
// idx, without touching the other point's flag.
func SetPointNull(port *mmio.Port, idx int, null bool) {
	r0 := PointIsZero(port, 0)
	r1 := PointIsZero(port, 1)
	if idx == 0 {
		r0 = null
	} else {
		r1 = null
	}
	restoreNullFlags(port, r0, r1)
}
