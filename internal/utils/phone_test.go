package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUSPhone(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"5":                "(5",
		"555":              "(555",
		"5551":             "(555)1",
		"555123":           "(555)123",
		"5551234":          "(555)123-4",
		"5551234567":       "(555)123-4567",
		"555-123-4567":     "(555)123-4567",
		"(555) 123 4567":   "(555)123-4567",
		"555123456789":     "(555)123-4567",
		"abc5551234567xyz": "(555)123-4567",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatUSPhone(in), "input %q", in)
	}
}

func TestFormatUSPhoneTruncatesAtTenthDigit(t *testing.T) {
	got := FormatUSPhone("12345678901234")
	require.Equal(t, "(123)456-7890", got)
	require.True(t, IsUSPhone(got))
}

func TestUSPhoneToE164(t *testing.T) {
	e164, err := USPhoneToE164("(555)123-4567")
	require.NoError(t, err)
	require.Equal(t, "+15551234567", e164)

	_, err = USPhoneToE164("555-123-4567")
	require.ErrorIs(t, err, ErrInvalidPhone)
}

func TestSyntaxOnlyPhoneVerifier(t *testing.T) {
	ok, err := SyntaxOnlyPhoneVerifier{}.VerifyPhone(context.Background(), "(555)123-4567")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = SyntaxOnlyPhoneVerifier{}.VerifyPhone(context.Background(), "(555)123-456")
	require.NoError(t, err)
	require.False(t, ok)
}
