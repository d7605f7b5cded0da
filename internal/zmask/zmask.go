//go:build zmask

/*
 * eccdrv - Z-mask (lambda) injection.
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

// Package zmask injects a caller-chosen lambda value mid-[k]P, for
// fault/side-channel analysis. Built only with -tags zmask (spec §4.11,
// §9); otherwise the stub in stub.go reports it unsupported.
package zmask

import (
	"fmt"

	"github.com/hwsec/eccdrv/internal/capability"
	"github.com/hwsec/eccdrv/internal/debugfsm"
	"github.com/hwsec/eccdrv/internal/mmio"
	"github.com/hwsec/eccdrv/internal/ucode"
)

const bpID = 1

// setupState is the FSM state value the lambda-draw landmark must halt
// in (spec §4.11: "verifies the FSM is in SETUP state").
const setupState = 0x1

// Inject arms a breakpoint just after the lambda draw, issues kp,
// confirms the halt landed in SETUP state, overwrites the lambda limbs
// with value, removes the breakpoint, and resumes (spec §4.11).
func Inject(port *mmio.Port, caps capability.Caps, nn, ww uint32, value []uint32, kp func() error) error {
	l, err := ucode.Lookup(ucode.LLambdaDraw)
	if err != nil {
		return err
	}

	if err := debugfsm.SetBreakpoint(port, debugfsm.Breakpoint{
		ID:       bpID,
		Addr:     l.PC,
		FSMState: debugfsm.StateAny,
		Enable:   true,
	}); err != nil {
		return err
	}

	if err := kp(); err != nil {
		return err
	}

	if debugfsm.CurrentState(port) != debugfsm.DebugHalted {
		return fmt.Errorf("eccdrv: zmask expected halt at lambda-draw landmark")
	}
	if got := mmio.DbgState.Get(port.Get(mmio.RegDebugStatus)); got != setupState {
		return fmt.Errorf("eccdrv: zmask expected microcode FSM in SETUP state, got %#x", got)
	}

	n := capability.MemoryStride(nn, ww)
	// Lambda occupies the large-number index conventionally following
	// R1_Y in the IP's internal memory map.
	const lambdaIndex = 8
	if err := debugfsm.WriteLargeNB(port, n, lambdaIndex, value, ww); err != nil {
		return err
	}

	if err := debugfsm.RemoveBreakpoint(port, bpID); err != nil {
		return err
	}
	return debugfsm.Resume(port)
}
