/*
 * eccdrv - Host driver for the memory-mapped ECC accelerator.
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

// Package ecc is the public, curve-agnostic API for the memory-mapped
// ECC hardware accelerator: point operations over prime-field short
// Weierstrass curves, plus the debug/attack surface used during
// bring-up and side-channel analysis (spec §1, §6).
package ecc

import (
	"fmt"
	"strings"

	"github.com/hwsec/eccdrv/internal/attack"
	"github.com/hwsec/eccdrv/internal/bignum"
	"github.com/hwsec/eccdrv/internal/capability"
	"github.com/hwsec/eccdrv/internal/clockdiag"
	"github.com/hwsec/eccdrv/internal/cmdseq"
	"github.com/hwsec/eccdrv/internal/countermeasure"
	"github.com/hwsec/eccdrv/internal/debugfsm"
	"github.com/hwsec/eccdrv/internal/mmio"
	"github.com/hwsec/eccdrv/internal/platform"
	"github.com/hwsec/eccdrv/internal/regwindow"
	"github.com/hwsec/eccdrv/internal/setup"
	"github.com/hwsec/eccdrv/internal/status"
	"github.com/hwsec/eccdrv/internal/token"
)

// Device is a handle to one ECC accelerator instance. It holds the only
// mutable process-wide state the driver needs: the MMIO base and the
// current curve's bit size (spec §5).
type Device struct {
	dev setup.Device
	nn  uint32
}

// New constructs an unbound Device. The IP is not touched until
// EnsureReady is called with a Platform.
func New() *Device {
	return &Device{}
}

// EnsureReady performs the idempotent one-time bring-up (spec §4.14).
func (d *Device) EnsureReady(p platform.Platform) error {
	return d.dev.EnsureReady(p)
}

func (d *Device) port() *mmio.Port { return d.dev.Port }

// --- Inspection ---------------------------------------------------------

func (d *Device) IsSecureBuild() bool   { return d.dev.Caps.SecureBuild }
func (d *Device) IsUnsecureBuild() bool { return !d.dev.Caps.SecureBuild }

// Capabilities is the cached, immutable capability snapshot (spec §3).
func (d *Device) Capabilities() capability.Caps { return d.dev.Caps }

// MoreCapabilities returns the debug-capability bits. Unsecure builds
// only; secure builds never expose them (spec §6).
func (d *Device) MoreCapabilities() (capability.Caps, error) {
	if d.dev.Caps.SecureBuild {
		return capability.Caps{}, fmt.Errorf("eccdrv: extended capabilities unavailable on secure build")
	}
	return d.dev.Caps, nil
}

// Version is the IP's {major, minor, patch} version (spec §6).
type Version struct {
	Major, Minor, Patch uint32
}

var (
	verMajor = mmio.NewField(0, 8)
	verMinor = mmio.NewField(8, 8)
	verPatch = mmio.NewField(16, 8)
)

func (d *Device) GetVersion() Version {
	word := d.port().Get(mmio.RegVersion)
	return Version{
		Major: verMajor.Get(word),
		Minor: verMinor.Get(word),
		Patch: verPatch.Get(word),
	}
}

// --- Configuration -------------------------------------------------------

// Curve is the host-side staging struct for set_curve (spec §3, this
// expansion's "Curve parameters").
type Curve struct {
	A, B, P, Q []byte
}

// SetCurve transfers a, b, p, q into the IP's slots, becoming the
// device's active nn for every subsequent operation. On a build without
// dynamic-nn support, the requested bit size is ignored and NN_MAX is
// used instead — setting nn is a no-op on such builds (spec §6, §8
// "dynamic nn").
func (d *Device) SetCurve(c Curve, nn uint32) error {
	port := d.port()
	targetNN := nn
	if !d.dev.Caps.DynamicNN {
		targetNN = d.dev.Caps.NNMax
	}
	if err := bignum.Write(port, regwindow.SlotA, c.A, targetNN); err != nil {
		return err
	}
	if err := bignum.Write(port, regwindow.SlotB, c.B, targetNN); err != nil {
		return err
	}
	if err := bignum.Write(port, regwindow.SlotP, c.P, targetNN); err != nil {
		return err
	}
	if err := bignum.Write(port, regwindow.SlotQ, c.Q, targetNN); err != nil {
		return err
	}
	d.nn = targetNN
	return nil
}

// GetNN returns the device's current active bit size (spec §6 "get_nn").
func (d *Device) GetNN() uint32 { return d.nn }

func (d *Device) EnableBlinding(sizeBits uint32) error {
	return countermeasure.SetBlinding(d.port(), sizeBits, d.nn)
}

func (d *Device) DisableBlinding() error {
	return countermeasure.SetBlinding(d.port(), 0, d.nn)
}

func (d *Device) EnableShuffling() error { return countermeasure.EnableShuffling(d.port(), d.dev.Caps) }

// DisableShuffling and the other Disable* methods below return any fault
// the IP reports after the disable write as their error.
func (d *Device) DisableShuffling() error {
	if f := countermeasure.DisableShuffling(d.port()); f != nil {
		return f
	}
	return nil
}

func (d *Device) EnableZRemask(periodBits uint32) error {
	return countermeasure.SetZRemask(d.port(), periodBits)
}
func (d *Device) DisableZRemask() error {
	if f := countermeasure.DisableZRemask(d.port()); f != nil {
		return f
	}
	return nil
}

func (d *Device) EnableXYShuffle() error { return countermeasure.EnableXYShuffle(d.port()) }
func (d *Device) DisableXYShuffle() error {
	if f := countermeasure.DisableXYShuffle(d.port()); f != nil {
		return f
	}
	return nil
}

func (d *Device) EnableAXIMask() error { return countermeasure.EnableAXIMask(d.port()) }
func (d *Device) DisableAXIMask() error {
	if f := countermeasure.DisableAXIMask(d.port()); f != nil {
		return f
	}
	return nil
}

func (d *Device) EnableToken() error { return countermeasure.EnableToken(d.port()) }
func (d *Device) DisableToken() error {
	if f := countermeasure.DisableToken(d.port()); f != nil {
		return f
	}
	return nil
}

var smallScalarSize = mmio.NewField(0, 16)

func (d *Device) SetSmallScalarSize(bits uint32) {
	d.port().Set(mmio.RegSmallScalarSz, smallScalarSize.Set(0, bits))
}

// --- Point operations ------------------------------------------------------

// currentNullFlags reads the R0/R1 is-null flags as they stand before an
// operand write, so Execute can restore them afterward unchanged (spec
// §4.7, §5: "preserve and restore", not "clear").
func (d *Device) currentNullFlags() (r0Null, r1Null bool) {
	port := d.port()
	return cmdseq.PointIsZero(port, 0), cmdseq.PointIsZero(port, 1)
}

// IsOnCurve tests whether (x, y) satisfies the active curve equation.
func (d *Device) IsOnCurve(x, y []byte) (bool, error) {
	r0n, r1n := d.currentNullFlags()
	res, err := cmdseq.Execute(d.port(), d.nn, cmdseq.OpCHK, cmdseq.Operands{R0X: x, R0Y: y, R0Null: r0n, R1Null: r1n})
	if err != nil {
		return false, err
	}
	return res.Yes, nil
}

// Eq tests whether R0 == R1 given the two supplied points.
func (d *Device) Eq(p0x, p0y, p1x, p1y []byte) (bool, error) {
	r0n, r1n := d.currentNullFlags()
	res, err := cmdseq.Execute(d.port(), d.nn, cmdseq.OpEQU, cmdseq.Operands{
		R0X: p0x, R0Y: p0y, R1X: p1x, R1Y: p1y, R0Null: r0n, R1Null: r1n,
	})
	if err != nil {
		return false, err
	}
	return res.Yes, nil
}

// Opp tests whether R0 == -R1.
func (d *Device) Opp(p0x, p0y, p1x, p1y []byte) (bool, error) {
	r0n, r1n := d.currentNullFlags()
	res, err := cmdseq.Execute(d.port(), d.nn, cmdseq.OpOPP, cmdseq.Operands{
		R0X: p0x, R0Y: p0y, R1X: p1x, R1Y: p1y, R0Null: r0n, R1Null: r1n,
	})
	if err != nil {
		return false, err
	}
	return res.Yes, nil
}

// Neg computes -P.
func (d *Device) Neg(x, y []byte) (rx, ry []byte, err error) {
	r0n, r1n := d.currentNullFlags()
	res, err := cmdseq.Execute(d.port(), d.nn, cmdseq.OpNEG, cmdseq.Operands{R0X: x, R0Y: y, R0Null: r0n, R1Null: r1n})
	if err != nil {
		return nil, nil, err
	}
	return res.R1X, res.R1Y, nil
}

// Dbl computes 2P.
func (d *Device) Dbl(x, y []byte) (rx, ry []byte, err error) {
	r0n, r1n := d.currentNullFlags()
	res, err := cmdseq.Execute(d.port(), d.nn, cmdseq.OpDBL, cmdseq.Operands{R0X: x, R0Y: y, R0Null: r0n, R1Null: r1n})
	if err != nil {
		return nil, nil, err
	}
	return res.R1X, res.R1Y, nil
}

// Add computes R0 + R1.
func (d *Device) Add(p0x, p0y, p1x, p1y []byte) (rx, ry []byte, err error) {
	r0n, r1n := d.currentNullFlags()
	res, err := cmdseq.Execute(d.port(), d.nn, cmdseq.OpADD, cmdseq.Operands{
		R0X: p0x, R0Y: p0y, R1X: p1x, R1Y: p1y, R0Null: r0n, R1Null: r1n,
	})
	if err != nil {
		return nil, nil, err
	}
	return res.R1X, res.R1Y, nil
}

// Mul computes [scalar]P via the token-masked [k]P command (spec §4.8).
func (d *Device) Mul(x, y, scalar []byte) (rx, ry []byte, err error) {
	port := d.port()

	tok, err := token.Request(port, d.nn)
	if err != nil {
		return nil, nil, err
	}

	if err := bignum.Write(port, regwindow.SlotScalar, scalar, d.nn); err != nil {
		return nil, nil, err
	}

	r0n, r1n := d.currentNullFlags()
	res, err := cmdseq.Execute(port, d.nn, cmdseq.OpKP, cmdseq.Operands{R0X: x, R0Y: y, R0Null: r0n, R1Null: r1n})
	if err != nil {
		return nil, nil, err
	}

	token.Unmask(res.R1X, res.R1Y, tok)
	return res.R1X, res.R1Y, nil
}

// --- Point-null flags ------------------------------------------------------

func (d *Device) PointIsZero(idx int) bool         { return cmdseq.PointIsZero(d.port(), idx) }
func (d *Device) PointZero(idx int)                { cmdseq.SetPointNull(d.port(), idx, true) }
func (d *Device) PointUnzero(idx int)              { cmdseq.SetPointNull(d.port(), idx, false) }

var slotNames = map[string]regwindow.Slot{
	"p": regwindow.SlotP, "a": regwindow.SlotA, "b": regwindow.SlotB, "q": regwindow.SlotQ,
	"r0x": regwindow.SlotR0X, "r0y": regwindow.SlotR0Y,
	"r1x": regwindow.SlotR1X, "r1y": regwindow.SlotR1Y,
	"scalar": regwindow.SlotScalar, "token": regwindow.SlotToken,
}

// ExamineSlot reads a named big-number slot's current value, for the
// debug console's "examine" command.
func (d *Device) ExamineSlot(name string) ([]byte, error) {
	slot, ok := slotNames[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("eccdrv: unknown slot: %s", name)
	}
	return bignum.Read(d.port(), slot, d.nn)
}

// --- Debug -----------------------------------------------------------------

// Reset issues the IP's soft reset. Unlike EnsureReady it is not
// one-shot: callers may reset a live, already-initialized device, e.g.
// to recover from a fault (spec §6 debug surface).
func (d *Device) Reset() error {
	port := d.port()
	port.Set(mmio.RegControl, 0)
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return f
	}
	return nil
}

// DebugState reports the IP's current IDLE/RUNNING/DEBUG_HALTED state.
func (d *Device) DebugState() debugfsm.State { return debugfsm.CurrentState(d.port()) }

func (d *Device) Halt() error                  { return debugfsm.Halt(d.port()) }
func (d *Device) Resume() error                { return debugfsm.Resume(d.port()) }
func (d *Device) SingleStep() error            { return debugfsm.SingleStep(d.port()) }
func (d *Device) RunOpcodes(n uint32) error    { return debugfsm.RunOpcodes(d.port(), n) }
func (d *Device) ArmTrigger()                  { debugfsm.ArmTrigger(d.port()) }
func (d *Device) DisarmTrigger()               { debugfsm.DisarmTrigger(d.port()) }
func (d *Device) SetTriggerUp(t uint32)        { debugfsm.SetTriggerUp(d.port(), t) }
func (d *Device) SetTriggerDown(t uint32)      { debugfsm.SetTriggerDown(d.port(), t) }

func (d *Device) SetBreakpoint(bp debugfsm.Breakpoint) error {
	return debugfsm.SetBreakpoint(d.port(), bp)
}
func (d *Device) RemoveBreakpoint(id uint32) error { return debugfsm.RemoveBreakpoint(d.port(), id) }

func (d *Device) PatchOneOpcode(addr, msb, lsb uint32, opsz int) error {
	return debugfsm.PatchOneOpcode(d.port(), d.dev.Caps, addr, msb, lsb, opsz)
}
func (d *Device) PatchMicrocode(buf []uint32, nbops, opsz int) error {
	return debugfsm.PatchMicrocode(d.port(), d.dev.Caps, buf, nbops, opsz)
}

func (d *Device) SelectDiagSource(src clockdiag.DiagSource) clockdiag.DiagCounters {
	return clockdiag.ReadDiag(d.port(), src)
}
func (d *Device) ReadOneRawBit(addr uint32) bool { return clockdiag.ReadRawBit(d.port(), addr) }
func (d *Device) SetTRNGPostProcessing(enable bool) {
	clockdiag.SetPostProcessing(d.port(), enable)
}
func (d *Device) DrainRawFIFO() (uint32, error) { return clockdiag.DrainRawFIFO(d.port()) }

func (d *Device) WriteLimb(i, j, v uint32, ww uint32) error {
	n := capability.MemoryStride(d.nn, ww)
	return debugfsm.WriteLimb(d.port(), n, i, j, v, ww)
}
func (d *Device) ReadLimb(i, j uint32, ww uint32) (uint32, error) {
	n := capability.MemoryStride(d.nn, ww)
	return debugfsm.ReadLimb(d.port(), n, i, j, ww)
}
func (d *Device) WriteLargeNB(i uint32, limbs []uint32, ww uint32) error {
	n := capability.MemoryStride(d.nn, ww)
	return debugfsm.WriteLargeNB(d.port(), n, i, limbs, ww)
}
func (d *Device) ReadLargeNB(i uint32, limbCount int, ww uint32) ([]uint32, error) {
	n := capability.MemoryStride(d.nn, ww)
	return debugfsm.ReadLargeNB(d.port(), n, i, limbCount, ww)
}

// --- Attack-level presets ----------------------------------------------------

func (d *Device) AttackSetLevel(level int) error {
	return attack.SetLevel(d.port(), d.dev.Caps, level)
}
func (d *Device) AttackEnableNNRNDSF() error  { return attack.SetNNRNDShift(d.port(), true) }
func (d *Device) AttackDisableNNRNDSF() error { return attack.SetNNRNDShift(d.port(), false) }
func (d *Device) AttackSetClockDivOut(div, divmm bool) error {
	return attack.SetClockDivOut(d.port(), div, divmm)
}
