package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsE164(t *testing.T) {
	valid := []string{
		"+15551234567",
		"+447911123456",
		"+2348012345678",
		"+861012345678",
	}
	for _, number := range valid {
		require.True(t, IsE164(number), "expected %q to be valid", number)
	}

	invalid := []string{
		"",
		"15551234567",       // missing plus
		"+05551234567",      // leading zero
		"+1555123",          // too short
		"+123456789012345678", // too long
		"+1555123456a",
		"not a number",
	}
	for _, number := range invalid {
		require.False(t, IsE164(number), "expected %q to be invalid", number)
	}
}

func TestIsValidEmailSyntax(t *testing.T) {
	require.True(t, IsValidEmailSyntax("user@example.com"))
	require.True(t, IsValidEmailSyntax("first.last+tag@sub.example.org"))

	require.False(t, IsValidEmailSyntax(""))
	require.False(t, IsValidEmailSyntax("not-an-email"))
	require.False(t, IsValidEmailSyntax("@example.com"))
}
