/*
 * eccdrv - Token protocol.
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

// Package token implements the [k]P result-masking token protocol: a
// fresh per-operation token is requested before the command, read back,
// and used to unmask the two result coordinates afterward (spec §4.8).
package token

import (
	"github.com/hwsec/eccdrv/internal/bignum"
	"github.com/hwsec/eccdrv/internal/mmio"
	"github.com/hwsec/eccdrv/internal/regwindow"
	"github.com/hwsec/eccdrv/internal/status"
)

// Request asks the IP to generate a fresh token, waits for it, and reads
// it back. Call this before writing [k]P operands.
func Request(port *mmio.Port, nn uint32) ([]byte, error) {
	port.Set(mmio.RegTokenRequest, 1)
	status.BusyWait(port)
	if f := status.CheckError(port); f != nil {
		return nil, f
	}
	return bignum.Read(port, regwindow.SlotToken, nn)
}

// Unmask XORs tok byte-wise into x and y in place and then zeroizes tok,
// per the lifecycle the IP expects: requested, generated, read, consumed,
// zeroized (spec §3, §4.8). x and y must be the same length as tok.
func Unmask(x, y, tok []byte) {
	for i := range tok {
		if i < len(x) {
			x[i] ^= tok[i]
		}
		if i < len(y) {
			y[i] ^= tok[i]
		}
	}
	Zeroize(tok)
}

// Zeroize overwrites tok with zero bytes.
func Zeroize(tok []byte) {
	for i := range tok {
		tok[i] = 0
	}
}
