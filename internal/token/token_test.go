package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnmaskXORsAndZeroizes(t *testing.T) {
	x := []byte{0x11, 0x22, 0x33}
	y := []byte{0xAA, 0xBB, 0xCC}
	tok := []byte{0x01, 0x02, 0x03}

	Unmask(x, y, tok)

	assert.Equal(t, []byte{0x10, 0x20, 0x30}, x)
	assert.Equal(t, []byte{0xAB, 0xB9, 0xCF}, y)
	assert.Equal(t, []byte{0x00, 0x00, 0x00}, tok)
}

func TestZeroize(t *testing.T) {
	buf := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	Zeroize(buf)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf)
}
