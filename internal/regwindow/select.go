/*
 * eccdrv - Register-window protocol.
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

// Package regwindow selects a named IP big-number slot for read or write
// and pushes/pops its per-limb words (spec §4.5).
package regwindow

import (
	"github.com/hwsec/eccdrv/internal/mmio"
	"github.com/hwsec/eccdrv/internal/status"
)

// Slot is a named IP big-number slot. SCALAR and R0X share the same
// physical index (spec §3): writing SCALAR additionally asserts the
// write-scalar flag, and reading TOKEN additionally asserts the
// read-token flag.
type Slot int

const (
	SlotP Slot = iota
	SlotA
	SlotB
	SlotQ
	SlotR0X
	SlotR0Y
	SlotR1X
	SlotR1Y
	SlotScalar
	SlotToken
)

// Direction selects read or write on the windowed slot.
type Direction int

const (
	DirWrite Direction = iota
	DirRead
)

func physicalIndex(slot Slot) uint32 {
	switch slot {
	case SlotScalar:
		return uint32(SlotR0X)
	case SlotToken:
		// Token has no ordinary slot index of its own; the read-token
		// flag on the control register is what actually selects it. The
		// address field value is irrelevant but kept deterministic.
		return 0
	default:
		return uint32(slot)
	}
}

// Select writes the control register to point the big-number window at
// slot in direction dir. BUSY must be (and is asserted to be) clear both
// on entry and on return (spec §4.5).
func Select(port *mmio.Port, slot Slot, dir Direction) {
	status.BusyWait(port)

	ctl := uint32(0)
	switch dir {
	case DirWrite:
		ctl = mmio.CtlWriteNB.SetBit(ctl, true)
	case DirRead:
		ctl = mmio.CtlReadNB.SetBit(ctl, true)
	}
	ctl = mmio.CtlNBAddress.Set(ctl, physicalIndex(slot))

	if slot == SlotScalar && dir == DirWrite {
		ctl = mmio.CtlWriteScal.SetBit(ctl, true)
	}
	if slot == SlotToken && dir == DirRead {
		ctl = mmio.CtlReadToken.SetBit(ctl, true)
	}

	port.Set(mmio.RegControl, ctl)
	status.BusyWait(port)
}

// PushWord writes one wire word of the currently-selected slot.
func PushWord(port *mmio.Port, word uint32) {
	port.Set(mmio.RegLargeNbData, word)
}

// PopWord reads one wire word of the currently-selected slot.
func PopWord(port *mmio.Port) uint32 {
	return port.Get(mmio.RegLargeNbData)
}
