//go:build !trace

package trace

import (
	"errors"

	"github.com/hwsec/eccdrv/internal/mmio"
)

// ErrNotCompiled is returned by Run when the binary was built without
// -tags trace (spec §9: tracing is conditionally compiled, not a
// runtime flag).
var ErrNotCompiled = errors.New("eccdrv: built without trace support")

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

type Buffer struct {
	Records  []Record
	Capacity int
	Overflow bool
}

func NewBuffer(capacity int) *Buffer {
	return &Buffer{Capacity: capacity}
}

func Run(port *mmio.Port, buf *Buffer, nn, ww uint32, kp func() error) error {
	return ErrNotCompiled
}
