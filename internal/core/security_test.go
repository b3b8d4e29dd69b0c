// AngelaMos | 2026
// security_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse")

	valid, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	valid, _, err := VerifyPasswordTimingSafe("secret", &hash)
	require.NoError(t, err)
	assert.True(t, valid)

	// No stored hash still burns a verification and always fails.
	valid, newHash, err := VerifyPasswordTimingSafe("secret", nil)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Empty(t, newHash)
}

func TestGenerateOTPCode(t *testing.T) {
	for _, digits := range []int{4, 6, 10} {
		code, err := GenerateOTPCode(digits)
		require.NoError(t, err)
		require.Len(t, code, digits)

		for _, c := range code {
			assert.GreaterOrEqual(t, c, '0')
			assert.LessOrEqual(t, c, '9')
		}
	}
}

func TestGenerateOTPCodeDrawsEveryDigit(t *testing.T) {
	seen := make(map[rune]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateOTPCode(6)
		require.NoError(t, err)
		for _, c := range code {
			seen[c] = true
		}
	}

	// 600 uniform draws; a digit missing from the output means the
	// generator is skewed or stuck.
	for d := '0'; d <= '9'; d++ {
		assert.True(t, seen[d], "digit %c never drawn", d)
	}
}

func TestGenerateSecureTokenIsUnique(t *testing.T) {
	a, err := GenerateSecureToken(32)
	require.NoError(t, err)
	b, err := GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
