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

// Package trace drives a breakpoint-pinned step-by-step [k]P execution,
// recording annotated snapshots at each named microcode landmark (spec
// §4.10). Built only with -tags trace; callers that don't pass that tag
// get the no-op stub in stub.go, so internal/cmdseq never changes shape
// based on whether tracing is compiled in.
package trace

import (
	"fmt"
	"log/slog"

	"github.com/hwsec/eccdrv/internal/capability"
	"github.com/hwsec/eccdrv/internal/debugfsm"
	"github.com/hwsec/eccdrv/internal/mmio"
	"github.com/hwsec/eccdrv/internal/ucode"
)

// Large-number indices beyond the register-window slots, in the IP's
// internal big-number memory (same indexing convention as
// internal/zmask's lambdaIndex: P=0..R1_Y=7, lambda=8, then further
// debug-only working values).
const (
	zIndex     = 9
	alphaIndex = 10
	phi0Index  = 11
	phi1Index  = 12
)

// randomnessIndex maps a landmark to the debug-only large-number index
// it just drew into, for landmarks that draw randomness (spec §4.10).
var randomnessIndex = map[string]uint32{
	ucode.LAlphaDraw:  alphaIndex,
	ucode.LPhi0Draw:   phi0Index,
	ucode.LPhi1Draw:   phi1Index,
	ucode.LLambdaDraw: 8, // lambdaIndex, per internal/zmask
}

// Record is one annotated snapshot captured at a microcode landmark. The
// limb slices are a raw copy of the IP's big-number memory at the moment
// of the halt (spec §4.10: "reads all limbs of the relevant large
// numbers"); Randomness is only populated at the landmark that just drew
// the corresponding value and is nil elsewhere.
type Record struct {
	Landmark   string
	PC         uint32
	R0IsZero   bool
	R1IsZero   bool
	Kappa      bool
	KappaP     bool
	ZU         bool
	ZC         bool
	BitIndex   uint32
	R0X        []uint32
	R0Y        []uint32
	R1X        []uint32
	R1Y        []uint32
	Z          []uint32
	Randomness []uint32
}

// Buffer is a fixed-capacity trace log with a one-shot overflow flag
// (spec §3: "fixed capacity... one-shot overflow flag").
type Buffer struct {
	Records  []Record
	Capacity int
	Overflow bool

	overflowed bool
}

// NewBuffer allocates a trace buffer of the given record capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{Capacity: capacity}
}

func (b *Buffer) append(r Record) {
	if len(b.Records) >= b.Capacity {
		if !b.overflowed {
			slog.Warn("eccdrv: trace buffer full, dropping subsequent records")
			b.overflowed = true
			b.Overflow = true
		}
		return
	}
	b.Records = append(b.Records, r)
}

// landmarks is the ordered set of breakpoint stops the engine steps
// through for one traced [k]P (spec §4.10).
var landmarks = []string{
	ucode.LInputCheck,
	ucode.LAlphaDraw,
	ucode.LPhi0Draw,
	ucode.LPhi1Draw,
	ucode.LLambdaDraw,
	ucode.LEndSetup,
	ucode.LZADDU,
	ucode.LZADDC,
	ucode.LZDBL,
	ucode.LZNEGC,
	ucode.LSubtractP,
	ucode.LExit,
	ucode.LCheckOnCurve,
}

// exceptionFlags decodes the debug flags register's per-op diagnostic
// bits (spec §4.10: "R0_is_zero, R1_is_zero, kappa, kappa', ZU, ZC, j").
var (
	exR0Zero   = mmio.NewField(4, 1)
	exR1Zero   = mmio.NewField(5, 1)
	exKappa    = mmio.NewField(6, 1)
	exKappaP   = mmio.NewField(7, 1)
	exZU       = mmio.NewField(8, 1)
	exZC       = mmio.NewField(9, 1)
	exBitIndex = mmio.NewField(10, 12)
)

// Run arms breakpoints on every §4.10 landmark in turn, issues kp,
// captures a record at each stop, and terminates when the PC reaches
// the end of the check-on-curve routine in the EXIT state (spec §4.10).
// nn/ww size the big-number limb reads taken at each landmark.
func Run(port *mmio.Port, buf *Buffer, nn, ww uint32, kp func() error) error {
	const bpID = 0
	n := capability.MemoryStride(nn, ww)
	limbCount := int(capability.LimbStride(nn, ww))

	for i, name := range landmarks {
		l, err := ucode.Lookup(name)
		if err != nil {
			return err
		}
		if err := debugfsm.SetBreakpoint(port, debugfsm.Breakpoint{
			ID:       bpID,
			Addr:     l.PC,
			FSMState: uint32(l.FSMState),
			Enable:   true,
		}); err != nil {
			return err
		}

		if i == 0 {
			if err := kp(); err != nil {
				return err
			}
		} else if err := debugfsm.Resume(port); err != nil {
			return err
		}

		if debugfsm.CurrentState(port) != debugfsm.DebugHalted {
			return fmt.Errorf("eccdrv: trace expected halt at landmark %s", name)
		}
		rec, err := capture(port, name, l.PC, n, limbCount, ww)
		if err != nil {
			return err
		}
		buf.append(rec)

		exit := ucode.CheckOnCurveExit()
		if l.PC == exit.PC {
			if err := debugfsm.RemoveBreakpoint(port, bpID); err != nil {
				return err
			}
			return debugfsm.Resume(port)
		}
	}

	return debugfsm.RemoveBreakpoint(port, bpID)
}

func capture(port *mmio.Port, name string, pc uint32, n uint32, limbCount int, ww uint32) (Record, error) {
	flags := port.Get(mmio.RegDebugFlags)
	rec := Record{
		Landmark: name,
		PC:       pc,
		R0IsZero: exR0Zero.Bit(flags),
		R1IsZero: exR1Zero.Bit(flags),
		Kappa:    exKappa.Bit(flags),
		KappaP:   exKappaP.Bit(flags),
		ZU:       exZU.Bit(flags),
		ZC:       exZC.Bit(flags),
		BitIndex: exBitIndex.Get(flags),
	}

	var err error
	if rec.R0X, err = debugfsm.ReadLargeNB(port, n, 4, limbCount, ww); err != nil {
		return Record{}, err
	}
	if rec.R0Y, err = debugfsm.ReadLargeNB(port, n, 5, limbCount, ww); err != nil {
		return Record{}, err
	}
	if rec.R1X, err = debugfsm.ReadLargeNB(port, n, 6, limbCount, ww); err != nil {
		return Record{}, err
	}
	if rec.R1Y, err = debugfsm.ReadLargeNB(port, n, 7, limbCount, ww); err != nil {
		return Record{}, err
	}
	if rec.Z, err = debugfsm.ReadLargeNB(port, n, zIndex, limbCount, ww); err != nil {
		return Record{}, err
	}
	if idx, ok := randomnessIndex[name]; ok {
		if rec.Randomness, err = debugfsm.ReadLargeNB(port, n, idx, limbCount, ww); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}
