/*
 * eccdrv - Clock, TRNG diagnostics, and raw-FIFO access.
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

// Package clockdiag estimates the IP's clock frequency, reads TRNG
// diagnostic counters, and drains the raw random-bit FIFO (spec §4.12).
package clockdiag

import (
	"fmt"
	"time"

	"github.com/hwsec/eccdrv/internal/mmio"
	"github.com/hwsec/eccdrv/internal/status"
)

// DiagSource identifies one of the five TRNG diagnostic counter sources.
type DiagSource uint32

const (
	SourceAXI DiagSource = iota
	SourceEFP
	SourceCRV
	SourceSHF
	SourceRAW
)

// DiagCounters is one source's MIN/MAX/OK/STARV snapshot.
type DiagCounters struct {
	Min   uint32
	Max   uint32
	OK    uint32
	Starv uint32
}

// ReadDiag selects source and reads its four counters. Counters are
// reset by the IP at the start of each [k]P (spec §4.11).
func ReadDiag(port *mmio.Port, source DiagSource) DiagCounters {
	port.Set(mmio.RegDiagSource, uint32(source))
	return DiagCounters{
		Min:   port.Get(mmio.RegDiagMin),
		Max:   port.Get(mmio.RegDiagMax),
		OK:    port.Get(mmio.RegDiagOK),
		Starv: port.Get(mmio.RegDiagStarv),
	}
}

// SetPostProcessing enables or disables TRNG post-processing. Raw-FIFO
// access requires it disabled, or the FIFO drains as fast as it fills
// (spec §4.11).
func SetPostProcessing(port *mmio.Port, enable bool) {
	word := mmio.NewField(0, 1).SetBit(0, enable)
	port.Set(mmio.RegTRNGPostProc, word)
}

// ReadRawBit writes addr to the raw-read address register, then reads
// one bit back (spec §4.11).
func ReadRawBit(port *mmio.Port, addr uint32) bool {
	port.Set(mmio.RegRawFIFORead, addr)
	word := port.Get(mmio.RegRawFIFOBit)
	return mmio.NewField(0, 1).Bit(word)
}

// rawFIFOWatchdogIters bounds the raw-FIFO fill poll (spec §4.12: "~16M
// iterations").
const rawFIFOWatchdogIters = 16_000_000

// DrainRawFIFO disables post-processing, resets the FIFO, polls until
// full (bounded by a watchdog rather than spinning forever, since this
// loop is not the hardware's own busy_wait), reads the fill-up-time
// register, and re-enables post-processing before returning (spec
// §4.12).
func DrainRawFIFO(port *mmio.Port) (fillTime uint32, err error) {
	SetPostProcessing(port, false)
	defer SetPostProcessing(port, true)

	port.Set(mmio.RegRawFIFOReset, 1)

	full := mmio.NewField(0, 1)
	for i := 0; i < rawFIFOWatchdogIters; i++ {
		if full.Bit(port.Get(mmio.RegRawFIFOFullAt)) {
			return port.Get(mmio.RegRawFIFOFullAt), nil
		}
	}
	return 0, status.ErrTimeout
}

// ExtractRawFIFO disables the FIFO's read port, zero-fills a buffer large
// enough for fill bits, then reads each of the fill raw bits at addresses
// [0, fill) and packs bit j into byte j/8 at position j mod 8, re-enabling
// the read port before returning (spec §4.12: "whole-FIFO bit extraction").
// fill is the caller's current fill count, typically the value DrainRawFIFO
// just reported full at, or the capability-reported raw-FIFO size.
func ExtractRawFIFO(port *mmio.Port, fill uint32) []byte {
	readEn := mmio.NewField(0, 1)
	port.Set(mmio.RegRawFIFOReadEn, readEn.SetBit(0, false))
	defer port.Set(mmio.RegRawFIFOReadEn, readEn.SetBit(0, true))

	buf := make([]byte, (fill+7)/8)
	for j := uint32(0); j < fill; j++ {
		if ReadRawBit(port, j) {
			buf[j/8] |= 1 << (j % 8)
		}
	}
	return buf
}

// EstimateClockHz samples the main clock counter, sleeps for s seconds,
// re-samples, and scales the delta by 2^precount / (s * 1e6), where
// precount is read from the IP's own precount register (spec §4.12). s
// must be <= 10 seconds. Because of the 1e6 divisor the returned value
// is in MHz, not Hz.
func EstimateClockHz(port *mmio.Port, s time.Duration) (uint64, error) {
	if s > 10*time.Second {
		return 0, fmt.Errorf("eccdrv: clock sample window %s exceeds 10s bound", s)
	}
	seconds := s.Seconds()
	if seconds <= 0 {
		return 0, fmt.Errorf("eccdrv: clock sample window must be positive")
	}

	precount := port.Get(mmio.RegClockPrecount)
	before := port.Get(mmio.RegClockMain)
	time.Sleep(s)
	after := port.Get(mmio.RegClockMain)

	delta := uint64(after - before)
	scale := uint64(1) << precount
	return uint64(float64(delta*scale) / (seconds * 1e6)), nil
}
