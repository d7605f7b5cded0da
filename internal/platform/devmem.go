/*
 * eccdrv - /dev/mem-backed platform for real hardware.
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

package platform

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

// DevMem maps a fixed physical address through /dev/mem. How that
// address is discovered (device tree, PCI BAR, board strapping) is out
// of scope for this driver; DevMem only does the final mmap step.
type DevMem struct {
	PhysAddr uintptr
	Size     int

	file *os.File
	mem  []byte
}

// NewDevMem records the physical window; /dev/mem is opened by the first
// MapECCBase call. size must cover the IP's whole register window (every
// offset in internal/mmio's register map plus one mmio.Stride).
func NewDevMem(physAddr uintptr, size int) *DevMem {
	return &DevMem{PhysAddr: physAddr, Size: size}
}

// MapECCBase mmaps the configured physical window and returns its base
// virtual address. Safe to call once; repeated calls return the same
// mapping.
func (d *DevMem) MapECCBase() (uintptr, error) {
	if d.mem != nil {
		return uintptr(unsafe.Pointer(&d.mem[0])), nil
	}

	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return 0, fmt.Errorf("eccdrv: open /dev/mem: %w", err)
	}

	mem, err := syscall.Mmap(int(f.Fd()), int64(d.PhysAddr), d.Size,
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return 0, fmt.Errorf("eccdrv: mmap IP window at %#x: %w", d.PhysAddr, err)
	}

	d.file = f
	d.mem = mem
	return uintptr(unsafe.Pointer(&d.mem[0])), nil
}

// Close unmaps the register window and closes /dev/mem.
func (d *DevMem) Close() error {
	if d.mem != nil {
		if err := syscall.Munmap(d.mem); err != nil {
			return err
		}
		d.mem = nil
	}
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
