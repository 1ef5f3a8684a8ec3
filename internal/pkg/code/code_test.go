package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SixASCIIDigits(t *testing.T) {
	for i := 0; i < 500; i++ {
		c, err := Generate()
		require.NoError(t, err)
		require.Len(t, c, Length)
		for _, r := range c {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in %q", r, c)
		}
	}
}

func TestGenerate_KeepsLeadingZeros(t *testing.T) {
	// P(no leading zero in 2000 draws) = 0.9^2000, effectively zero.
	sawLeadingZero := false
	for i := 0; i < 2000 && !sawLeadingZero; i++ {
		c, err := Generate()
		require.NoError(t, err)
		require.Len(t, c, Length)
		sawLeadingZero = c[0] == '0'
	}
	assert.True(t, sawLeadingZero)
}

func TestGenerateN(t *testing.T) {
	c, err := GenerateN(4)
	require.NoError(t, err)
	assert.Len(t, c, 4)
}
