package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// CodePurpose selects the expiry window for a one-time code.
type CodePurpose string

const (
	PurposeEmailVerification CodePurpose = "email_verification"
	PurposePasswordRecovery  CodePurpose = "password_recovery"
)

const codeDigits = 6

var codeSpace = big.NewInt(1_000_000)

// CodeGenerator produces one-time numeric codes with a per-purpose expiry.
// Codes are scoped per user, so no global uniqueness is needed; resistance to
// guessing comes from the uniform 6-digit space and the expiry window.
type CodeGenerator struct {
	verificationTTL time.Duration
	recoveryTTL     time.Duration
	now             func() time.Time
}

func NewCodeGenerator(verificationTTL, recoveryTTL time.Duration) *CodeGenerator {
	return &CodeGenerator{
		verificationTTL: verificationTTL,
		recoveryTTL:     recoveryTTL,
		now:             time.Now,
	}
}

// Generate returns a fresh code and its absolute expiry.
func (g *CodeGenerator) Generate(purpose CodePurpose) (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", time.Time{}, err
	}
	code := fmt.Sprintf("%0*d", codeDigits, n)

	ttl := g.verificationTTL
	if purpose == PurposePasswordRecovery {
		ttl = g.recoveryTTL
	}
	return code, g.now().Add(ttl), nil
}
