package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	for _, length := range []int{4, 6, 8, 10} {
		code, err := generateVerificationCode(length)
		require.NoError(t, err)
		require.Len(t, code, length)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "non-digit %q in code %q", r, code)
		}
	}
}

func TestGenerateVerificationCodeDistinctness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateVerificationCode(6)
		require.NoError(t, err)
		seen[code] = true
	}
	// 100 draws from a million-value space colliding down to a handful
	// would point at a broken generator.
	require.Greater(t, len(seen), 95)
}
