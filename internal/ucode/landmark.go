/*
 * eccdrv - Microcode landmark table.
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

// Package ucode names the microcode program-counter landmarks the trace
// engine and attack-level presets reference, and assembles one-opcode
// patches against them (spec §4.10, §4.13, §4.16).
package ucode

import "fmt"

// Landmark is a named, well-known microcode program-counter value. Some
// landmarks are ambiguous by PC alone and carry a disambiguating FSM
// state (spec §4.10: "for ambiguous PCs, FSM-state match").
type Landmark struct {
	Name     string
	PC       uint32
	FSMState uint8 // 0xFF means "any state"
}

const AnyState uint8 = 0xFF

// Well-known landmark names (spec §4.10, §4.13). The PC values below are
// this driver's own symbolic placeholders for the microcode addresses a
// real bring-up assigns; what matters for compatibility is that trace
// and attack-preset code look them up by name, never by bare literal.
const (
	LInputCheck    = "INPUT_CHECK"
	LAlphaDraw     = "ALPHA_DRAW"
	LPhi0Draw      = "PHI0_DRAW"
	LPhi1Draw      = "PHI1_DRAW"
	LLambdaDraw    = "LAMBDA_DRAW"
	LEndSetup      = "END_SETUP"
	LZADDU         = "ZADDU"
	LZADDC         = "ZADDC"
	LZDBL          = "ZDBL"
	LZNEGC         = "ZNEGC"
	LSubtractP     = "SUBTRACT_P"
	LExit          = "EXIT"
	LCheckOnCurve  = "CHECK_ON_CURVE"
	LKappaLSB      = "KAPPA_LSB_SAMPLE"
	LJumpToDouble  = "JUMP_TO_DOUBLE"
)

var table = map[string]Landmark{
	LInputCheck:   {Name: LInputCheck, PC: 0x000, FSMState: AnyState},
	LAlphaDraw:    {Name: LAlphaDraw, PC: 0x010, FSMState: AnyState},
	LPhi0Draw:     {Name: LPhi0Draw, PC: 0x014, FSMState: AnyState},
	LPhi1Draw:     {Name: LPhi1Draw, PC: 0x018, FSMState: AnyState},
	LLambdaDraw:   {Name: LLambdaDraw, PC: 0x01C, FSMState: AnyState},
	LEndSetup:     {Name: LEndSetup, PC: 0x020, FSMState: 0x1}, // SETUP
	LZADDU:        {Name: LZADDU, PC: 0x040, FSMState: AnyState},
	LZADDC:        {Name: LZADDC, PC: 0x060, FSMState: AnyState},
	LZDBL:         {Name: LZDBL, PC: 0x080, FSMState: AnyState},
	LZNEGC:        {Name: LZNEGC, PC: 0x0A0, FSMState: AnyState},
	LSubtractP:    {Name: LSubtractP, PC: 0x0C0, FSMState: AnyState},
	LExit:         {Name: LExit, PC: 0x0E0, FSMState: 0x2}, // EXIT
	LCheckOnCurve: {Name: LCheckOnCurve, PC: 0x0F0, FSMState: 0x2},
	LKappaLSB:     {Name: LKappaLSB, PC: 0x024, FSMState: AnyState},
	LJumpToDouble: {Name: LJumpToDouble, PC: 0x044, FSMState: AnyState},
}

// Lookup returns the landmark by name.
func Lookup(name string) (Landmark, error) {
	l, ok := table[name]
	if !ok {
		return Landmark{}, fmt.Errorf("eccdrv: unknown microcode landmark %q", name)
	}
	return l, nil
}

// CheckOnCurveExit is the PC at which the trace engine's termination
// condition fires: the last opcode of the check-on-curve routine, in
// the EXIT state (spec §4.10).
func CheckOnCurveExit() Landmark {
	l := table[LCheckOnCurve]
	return l
}

// PatchFor builds patch-one-opcode arguments for a named landmark:
// addr is the landmark's PC, msb/lsb hold value split for a 2-word
// opcode (opsz 2), or msb alone for a 1-word opcode (opsz 1).
func PatchFor(name string, value uint64, opsz int) (addr, msb, lsb uint32, err error) {
	l, err := Lookup(name)
	if err != nil {
		return 0, 0, 0, err
	}
	switch opsz {
	case 1:
		return l.PC, uint32(value), 0, nil
	case 2:
		return l.PC, uint32(value >> 32), uint32(value), nil
	default:
		return 0, 0, 0, fmt.Errorf("eccdrv: invalid opcode size %d", opsz)
	}
}
