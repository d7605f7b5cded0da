/*
 * eccdrv - Hex formatting for limbs and byte buffers.
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

// Package hexfmt renders register words, limbs, and byte buffers as hex
// text for the trace log and the debug console.
package hexfmt

import "strings"

var hexMap = "0123456789ABCDEF"

// FormatWords appends each 32-bit word as 8 hex digits, space separated.
func FormatWords(str *strings.Builder, words []uint32) {
	for _, full := range words {
		shift := 28
		for range 8 {
			str.WriteByte(hexMap[(full>>shift)&0xf])
			shift -= 4
		}
		str.WriteByte(' ')
	}
}

// FormatBytes appends data as hex digit pairs, optionally space separated.
func FormatBytes(str *strings.Builder, space bool, data []byte) {
	for _, by := range data {
		str.WriteByte(hexMap[(by>>4)&0xf])
		str.WriteByte(hexMap[by&0xf])
		if space {
			str.WriteByte(' ')
		}
	}
}

// Bytes renders a byte slice as a single hex string, e.g. for CLI output.
func Bytes(data []byte) string {
	var b strings.Builder
	FormatBytes(&b, false, data)
	return b.String()
}

// Word renders one 32-bit value as 8 hex digits.
func Word(v uint32) string {
	var b strings.Builder
	FormatWords(&b, []uint32{v})
	return strings.TrimSpace(b.String())
}
