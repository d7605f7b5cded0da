/*
 * eccdrv - Composite status-word polling.
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

package status

import (
	"log/slog"

	"github.com/hwsec/eccdrv/internal/mmio"
)

// BusyReason classifies why BUSY is currently set, for diagnostics only —
// it is not required for correctness of busy_wait itself.
type BusyReason int

const (
	BusyNone BusyReason = iota
	BusyKP
	BusyMontgomery
	BusyPointOp
	BusyRW
	BusyInit
	BusyNNRefresh
	BusyTokenGen
)

// BusyWait spins until the composite BUSY bit clears. The source's
// busy_wait is an unbounded spin on a volatile register; this preserves
// that (spec §9 open question) — callers in environments where the IP may
// hang should add a bounded watchdog at the integration layer, not here.
func BusyWait(port *mmio.Port) {
	for {
		word := port.Get(mmio.RegStatus)
		if !mmio.StBusy.Bit(word) {
			return
		}
	}
}

// EnoughWkRandomWait spins until the "enough randomness to mask scalar"
// bit clears. Called before every scalar write (spec §4.3).
func EnoughWkRandomWait(port *mmio.Port) {
	for {
		word := port.Get(mmio.RegStatus)
		if !mmio.StEnoughRndWK.Bit(word) {
			return
		}
	}
}

// Reason reports the current busy sub-reason from the status word.
func Reason(port *mmio.Port) BusyReason {
	word := port.Get(mmio.RegStatus)
	switch {
	case mmio.StKP.Bit(word):
		return BusyKP
	case mmio.StMTY.Bit(word):
		return BusyMontgomery
	case mmio.StPOP.Bit(word):
		return BusyPointOp
	case mmio.StROrW.Bit(word):
		return BusyRW
	case mmio.StInit.Bit(word):
		return BusyInit
	case mmio.StNNDynAct.Bit(word):
		return BusyNNRefresh
	case mmio.StTokenGen.Bit(word):
		return BusyTokenGen
	default:
		return BusyNone
	}
}

// CheckError reads the error field of the status register. If it is
// non-zero it logs each named bit, acknowledges all set bits by writing
// them back to the error-ACK register, and returns a *Fault. Errors are
// never silently cleared (spec §7): CheckError always performs the
// acknowledge write when Raw != 0, even if the caller discards the error.
func CheckError(port *mmio.Port) *Fault {
	word := port.Get(mmio.RegStatus)
	raw := mmio.StError.Get(word)
	if raw == 0 {
		return nil
	}

	f := &Fault{Raw: raw}
	for _, bit := range f.Bits() {
		slog.Warn("eccdrv: IP error", "bit", bit.String())
	}

	ack := mmio.StError.Set(0, raw)
	port.Set(mmio.RegErrorAck, ack)

	return f
}
