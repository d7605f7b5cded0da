/*
 * eccdrv - Debug state machine.
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

// Package debugfsm drives the IP's debug state machine: halt/resume,
// single-step, run-N, breakpoints, triggers, opcode patching and direct
// limb memory access (spec §4.9).
package debugfsm

import (
	"errors"
	"fmt"

	"github.com/hwsec/eccdrv/internal/capability"
	"github.com/hwsec/eccdrv/internal/mmio"
	"github.com/hwsec/eccdrv/internal/status"
)

// State mirrors the IP's three-state debug FSM.
type State int

const (
	Idle State = iota
	Running
	DebugHalted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Running:
		return "RUNNING"
	case DebugHalted:
		return "DEBUG_HALTED"
	default:
		return "UNKNOWN"
	}
}

// ErrNotHalted is returned by operations that require DEBUG_HALTED or
// IDLE and find the IP RUNNING instead (spec §4.9: "otherwise fail
// without side effect").
var ErrNotHalted = errors.New("eccdrv: operation requires DEBUG_HALTED or IDLE")

// Breakpoint is one of up to four concurrently armed breakpoints (spec
// §3). State == StateAny means "any state"; BitPos == 0 means "any bit".
const StateAny = 0xF

type Breakpoint struct {
	ID       uint32
	Addr     uint32
	BitPos   uint32
	FSMState uint32
	Enable   bool
}

// CurrentState derives the FSM state from the debug status and
// composite status registers: halted takes priority, otherwise BUSY
// distinguishes RUNNING from IDLE (spec §4.9).
func CurrentState(port *mmio.Port) State {
	dbg := port.Get(mmio.RegDebugStatus)
	if mmio.DbgHalted.Bit(dbg) {
		return DebugHalted
	}
	st := port.Get(mmio.RegStatus)
	if mmio.StBusy.Bit(st) {
		return Running
	}
	return Idle
}

// Halt requests an immediate halt, transitioning RUNNING -> DEBUG_HALTED.
func Halt(port *mmio.Port) error {
	port.Set(mmio.RegHalt, 1)
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return f
	}
	return nil
}

// Resume transitions DEBUG_HALTED -> RUNNING.
func Resume(port *mmio.Port) error {
	port.Set(mmio.RegHalt, 0)
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return f
	}
	return nil
}

// SetBreakpoint arms one of the four breakpoint slots.
func SetBreakpoint(port *mmio.Port, bp Breakpoint) error {
	if bp.ID > 3 {
		return fmt.Errorf("eccdrv: breakpoint id %d out of range 0..3", bp.ID)
	}
	word := mmio.BkEnable.SetBit(0, bp.Enable)
	word = mmio.BkID.Set(word, bp.ID)
	word = mmio.BkAddr.Set(word, bp.Addr)
	word = mmio.BkBitPos.Set(word, bp.BitPos)
	word = mmio.BkState.Set(word, bp.FSMState)
	port.Set(mmio.RegBreakpoint, word)
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return f
	}
	return nil
}

// RemoveBreakpoint disarms breakpoint id.
func RemoveBreakpoint(port *mmio.Port, id uint32) error {
	return SetBreakpoint(port, Breakpoint{ID: id, Enable: false})
}

// RunOpcodes runs n opcodes, transitioning back to DEBUG_HALTED on
// completion or on an earlier breakpoint hit. It shares the
// requireHaltedOrIdle precondition: it fails with ErrNotHalted, without
// side effect, only when the IP is RUNNING; a call from IDLE is not
// rejected.
func RunOpcodes(port *mmio.Port, n uint32) error {
	if err := requireHaltedOrIdle(port); err != nil {
		return err
	}
	port.Set(mmio.RegRunOpcodes, n)
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return f
	}
	return nil
}

// SingleStep runs exactly one opcode.
func SingleStep(port *mmio.Port) error {
	return RunOpcodes(port, 1)
}

// ArmTrigger / DisarmTrigger and SetTriggerUp/Down bound the window in
// which the external trigger signal is driven (spec §4.9).
func ArmTrigger(port *mmio.Port) {
	port.Set(mmio.RegTrigger, 1)
}

func DisarmTrigger(port *mmio.Port) {
	port.Set(mmio.RegTrigger, 0)
}

func SetTriggerUp(port *mmio.Port, t uint32) {
	port.Set(mmio.RegTriggerUp, t)
}

func SetTriggerDown(port *mmio.Port, t uint32) {
	port.Set(mmio.RegTriggerDown, t)
}

// requireHaltedOrIdle enforces the "DEBUG_HALTED or idle" precondition
// shared by patching and direct memory access operations.
func requireHaltedOrIdle(port *mmio.Port) error {
	st := CurrentState(port)
	if st != DebugHalted && st != Idle {
		return ErrNotHalted
	}
	return nil
}

// PatchOneOpcode writes a single micro-op at addr. opsz is the opcode
// width in 32-bit words: 1 writes msb only (lsb is ignored and may be
// zero), 2 writes the low half first then the high half (spec §4.9).
// addr is bounds-checked against the next-power-of-two opcode memory
// stride.
func PatchOneOpcode(port *mmio.Port, caps capability.Caps, addr, msb, lsb uint32, opsz int) error {
	if err := requireHaltedOrIdle(port); err != nil {
		return err
	}
	bound := capability.NextPow2(caps.OpcodeCount)
	if addr >= bound {
		return fmt.Errorf("eccdrv: opcode address %d out of range [0,%d)", addr, bound)
	}

	port.Set(mmio.RegOpcodeAddr, addr)
	switch opsz {
	case 1:
		port.Set(mmio.RegOpcodeLo, msb)
	case 2:
		port.Set(mmio.RegOpcodeLo, lsb)
		port.Set(mmio.RegOpcodeHi, msb)
	default:
		return fmt.Errorf("eccdrv: invalid opcode size %d", opsz)
	}
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return f
	}
	return nil
}

// PatchMicrocode writes nbops opcodes starting at address 0. buf holds
// big-endian 32-bit words; when opsz == 2 the MSB word of op i is at
// buf[2*i] and the LSB word is at buf[2*i+1] (spec §4.9).
func PatchMicrocode(port *mmio.Port, caps capability.Caps, buf []uint32, nbops int, opsz int) error {
	for i := 0; i < nbops; i++ {
		addr := uint32(i)
		switch opsz {
		case 1:
			if err := PatchOneOpcode(port, caps, addr, buf[i], 0, 1); err != nil {
				return err
			}
		case 2:
			msb := buf[2*i]
			lsb := buf[2*i+1]
			if err := PatchOneOpcode(port, caps, addr, msb, lsb, 2); err != nil {
				return err
			}
		default:
			return fmt.Errorf("eccdrv: invalid opcode size %d", opsz)
		}
	}
	return nil
}

// WriteLimb writes one limb at big-number index i, limb index j, in the
// IP's big-number memory, addressed as i*n + j where n is the memory
// stride (spec §4.2, §4.9). Requires ww <= 32.
func WriteLimb(port *mmio.Port, n, i, j, v uint32, ww uint32) error {
	if ww > 32 {
		return fmt.Errorf("eccdrv: direct limb access requires ww<=32, got %d", ww)
	}
	if err := requireHaltedOrIdle(port); err != nil {
		return err
	}
	port.Set(mmio.RegLargeNbAddr, i*n+j)
	port.Set(mmio.RegLargeNbData, v)
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return f
	}
	return nil
}

// ReadLimb reads one limb at big-number index i, limb index j.
func ReadLimb(port *mmio.Port, n, i, j uint32, ww uint32) (uint32, error) {
	if ww > 32 {
		return 0, fmt.Errorf("eccdrv: direct limb access requires ww<=32, got %d", ww)
	}
	if err := requireHaltedOrIdle(port); err != nil {
		return 0, err
	}
	port.Set(mmio.RegLargeNbAddr, i*n+j)
	v := port.Get(mmio.RegLargeNbData)
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return 0, f
	}
	return v, nil
}

// WriteLargeNB writes every limb of big-number index i in one call.
func WriteLargeNB(port *mmio.Port, n, i uint32, limbs []uint32, ww uint32) error {
	for j, v := range limbs {
		if err := WriteLimb(port, n, i, uint32(j), v, ww); err != nil {
			return err
		}
	}
	return nil
}

// ReadLargeNB reads limbCount limbs of big-number index i.
func ReadLargeNB(port *mmio.Port, n, i uint32, limbCount int, ww uint32) ([]uint32, error) {
	out := make([]uint32, limbCount)
	for j := range out {
		v, err := ReadLimb(port, n, i, uint32(j), ww)
		if err != nil {
			return nil, err
		}
		out[j] = v
	}
	return out, nil
}
