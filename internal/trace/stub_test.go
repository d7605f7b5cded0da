//go:build !trace

package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunWithoutTraceTagReportsUnsupported(t *testing.T) {
	buf := NewBuffer(10)
	err := Run(nil, buf, 256, 32, func() error { return nil })
	assert.ErrorIs(t, err, ErrNotCompiled)
}
