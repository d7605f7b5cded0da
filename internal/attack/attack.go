/*
 * eccdrv - Attack-level presets.
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

// Package attack applies the four composite attack-level security
// presets: an attack-config register write, a handful of named-landmark
// opcode patches, and countermeasure toggles, applied atomically (spec
// §4.13).
package attack

import (
	"fmt"
	"log/slog"

	"github.com/hwsec/eccdrv/internal/capability"
	"github.com/hwsec/eccdrv/internal/debugfsm"
	"github.com/hwsec/eccdrv/internal/mmio"
	"github.com/hwsec/eccdrv/internal/status"
	"github.com/hwsec/eccdrv/internal/ucode"
)

// Attack-config-0 fields (spec §3): not-always-add, no-collision
// countermeasure, no-nnrnd-shift, clk-div-out, clk-mm-div-out.
var (
	cfgNotAlwaysAdd   = mmio.NewField(0, 1)
	cfgNoCollisionCtr = mmio.NewField(1, 1)
	cfgNoNNRndShift   = mmio.NewField(2, 1)
	cfgClkDivOut      = mmio.NewField(3, 1)
	cfgClkMMDivOut    = mmio.NewField(4, 1)
)

// patch is one named-landmark opcode patch a preset applies.
type patch struct {
	landmark string
	value    uint64
	opsz     int
}

// preset is one level's atomic sequence of steps. cfg0/cfg1/cfg2 are
// written together as the attack-config register triple (spec §4.6);
// cfg1 carries the small-scalar-size threshold the preset enforces and
// cfg2 the clock-divider ratio, both zero (disabled) unless a level
// says otherwise.
type preset struct {
	level            int
	cfg0, cfg1, cfg2 uint32
	patches          []patch
	aximEnable       *bool
	nnrndEnable      *bool
}

var presets = map[int]preset{
	0: {
		level: 0,
		cfg0:  cfgNotAlwaysAdd.SetBit(0, true),
	},
	1: {
		level:       1,
		cfg0:        0,
		patches:     []patch{{ucode.LJumpToDouble, 0, 1}},
		aximEnable:  boolPtr(false),
		nnrndEnable: boolPtr(true),
	},
	2: {
		level: 2,
		cfg0:  cfgNoCollisionCtr.SetBit(0, true),
		cfg1:  smallScalarThreshold.Set(0, 16),
		patches: []patch{
			{ucode.LJumpToDouble, 0, 1},
			{ucode.LKappaLSB, 1, 1},
		},
		aximEnable:  boolPtr(true),
		nnrndEnable: boolPtr(true),
	},
	3: {
		level: 3,
		cfg0:  cfgNoCollisionCtr.SetBit(0, true),
		cfg1:  smallScalarThreshold.Set(0, 16),
		cfg2:  clkDividerRatio.Set(0, 4),
		patches: []patch{
			{ucode.LJumpToDouble, 0, 1},
			{ucode.LKappaLSB, 1, 1},
			{ucode.LPhi0Draw, 1, 1},
			{ucode.LPhi1Draw, 1, 1},
		},
		aximEnable:  boolPtr(true),
		nnrndEnable: boolPtr(true),
	},
}

// Attack-config-1/2 fields: cfg1 holds the small-scalar-size threshold
// below which the collision countermeasure's masking is forced on;
// cfg2 holds the clock-divider ratio applied with clk-div-out (spec
// §4.6, §4.13).
var (
	smallScalarThreshold = mmio.NewField(0, 16)
	clkDividerRatio      = mmio.NewField(0, 8)
)

func boolPtr(b bool) *bool { return &b }

// SetLevel applies preset level (0..3). Every step requires DEBUG_HALTED
// or idle; failure of any step aborts the preset and returns an error
// without guaranteeing earlier steps were rolled back (spec §4.13: the
// hardware enforces per-step constraints, the driver does not retry).
// Applying the same level twice in a row is idempotent, since every
// step is itself a plain register write, not a toggle.
func SetLevel(port *mmio.Port, caps capability.Caps, level int) error {
	p, ok := presets[level]
	if !ok {
		return fmt.Errorf("eccdrv: invalid attack level %d, want 0..3", level)
	}
	slog.Info("eccdrv: applying attack level", "level", level)

	if err := requireHaltedOrIdle(port); err != nil {
		return err
	}

	port.Set(mmio.RegAttackCfg0, p.cfg0)
	port.Set(mmio.RegAttackCfg1, p.cfg1)
	port.Set(mmio.RegAttackCfg2, p.cfg2)
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return f
	}

	for _, pt := range p.patches {
		addr, msb, lsb, err := ucode.PatchFor(pt.landmark, pt.value, pt.opsz)
		if err != nil {
			return err
		}
		if err := debugfsm.PatchOneOpcode(port, caps, addr, msb, lsb, pt.opsz); err != nil {
			return err
		}
	}

	if p.aximEnable != nil {
		word := mmio.NewField(0, 1).SetBit(0, *p.aximEnable)
		port.Set(mmio.RegAXIMask, word)
		status.BusyWait(port)
		if f := status.CheckError(port); f != nil {
			return f
		}
	}

	if p.nnrndEnable != nil {
		if err := SetNNRNDShift(port, *p.nnrndEnable); err != nil {
			return err
		}
	}

	return nil
}

// SetNNRNDShift enables or disables the kappa/kappa' shift-register
// masking (attack-config bit 2, inverted: "no-nnrnd-shift").
func SetNNRNDShift(port *mmio.Port, enable bool) error {
	cfg0 := port.Get(mmio.RegAttackCfg0)
	cfg0 = cfgNoNNRndShift.SetBit(cfg0, !enable)
	port.Set(mmio.RegAttackCfg0, cfg0)
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return f
	}
	return nil
}

// SetClockDivOut configures the clk-div-out / clk-mm-div-out attack
// config bits.
func SetClockDivOut(port *mmio.Port, div, divmm bool) error {
	cfg0 := port.Get(mmio.RegAttackCfg0)
	cfg0 = cfgClkDivOut.SetBit(cfg0, div)
	cfg0 = cfgClkMMDivOut.SetBit(cfg0, divmm)
	port.Set(mmio.RegAttackCfg0, cfg0)
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return f
	}
	return nil
}

func requireHaltedOrIdle(port *mmio.Port) error {
	st := debugfsm.CurrentState(port)
	if st != debugfsm.DebugHalted && st != debugfsm.Idle {
		return debugfsm.ErrNotHalted
	}
	return nil
}
