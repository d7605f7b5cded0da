//go:build !zmask

package zmask

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hwsec/eccdrv/internal/capability"
)

func TestInjectWithoutZmaskTagReportsUnsupported(t *testing.T) {
	err := Inject(nil, capability.Caps{}, 256, 32, nil, func() error { return nil })
	assert.ErrorIs(t, err, ErrNotCompiled)
}
