package ucode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownLandmark(t *testing.T) {
	l, err := Lookup(LZADDU)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x040), l.PC)
}

func TestLookupUnknownLandmark(t *testing.T) {
	_, err := Lookup("NOT_A_LANDMARK")
	assert.Error(t, err)
}

func TestPatchForOneWord(t *testing.T) {
	addr, msb, lsb, err := PatchFor(LKappaLSB, 0xAB, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x024), addr)
	assert.Equal(t, uint32(0xAB), msb)
	assert.Equal(t, uint32(0), lsb)
}

func TestPatchForTwoWord(t *testing.T) {
	addr, msb, lsb, err := PatchFor(LJumpToDouble, 0x1_00000002, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x044), addr)
	assert.Equal(t, uint32(1), msb)
	assert.Equal(t, uint32(2), lsb)
}

func TestPatchForUnknownLandmark(t *testing.T) {
	_, _, _, err := PatchFor("BOGUS", 0, 1)
	assert.Error(t, err)
}
