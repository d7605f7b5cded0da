package mmio

import "unsafe"

// wordAddr32/wordAddr64 compute the address of register idx within the
// window starting at base. Registers sit at a fixed 8-byte (Stride) stride
// regardless of wire width — only the width of the load/store at that
// address differs. Kept in their own file because they are the only
// unsafe.Pointer arithmetic in the driver.
func wordAddr32(base uintptr, idx uint32) unsafe.Pointer {
	return unsafe.Pointer(base + uintptr(idx)*Stride) //nolint:gosec
}

func wordAddr64(base uintptr, idx uint32) unsafe.Pointer {
	return unsafe.Pointer(base + uintptr(idx)*Stride) //nolint:gosec
}
