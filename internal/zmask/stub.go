//go:build !zmask

package zmask

import (
	"errors"

	"github.com/hwsec/eccdrv/internal/capability"
	"github.com/hwsec/eccdrv/internal/mmio"
)

// ErrNotCompiled is returned by Inject when the binary was built
// without -tags zmask.
var ErrNotCompiled = errors.New("eccdrv: built without zmask support")

func Inject(port *mmio.Port, caps capability.Caps, nn, ww uint32, value []uint32, kp func() error) error {
	return ErrNotCompiled
}
