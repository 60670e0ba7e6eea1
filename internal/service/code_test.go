package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateProducesSixDigits(t *testing.T) {
	gen := NewCodeGenerator(24*time.Hour, 15*time.Minute)

	for i := 0; i < 50; i++ {
		code, _, err := gen.Generate(PurposeEmailVerification)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
		}
	}
}

func TestGenerateExpiryPerPurpose(t *testing.T) {
	gen := NewCodeGenerator(24*time.Hour, 15*time.Minute)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gen.now = func() time.Time { return base }

	_, verifyExpiry, err := gen.Generate(PurposeEmailVerification)
	require.NoError(t, err)
	require.Equal(t, base.Add(24*time.Hour), verifyExpiry)

	_, recoveryExpiry, err := gen.Generate(PurposePasswordRecovery)
	require.NoError(t, err)
	require.Equal(t, base.Add(15*time.Minute), recoveryExpiry)
}
