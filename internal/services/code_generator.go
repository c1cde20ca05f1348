package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"congregationhub/internal/domain"
)

// Check-in codes are four-digit numbers in 1000-9999 so they are easy to
// read out and type on a phone. Uniqueness among active sessions is enforced
// by the repository at insert time, not here.
const (
	codeMin = 1000
	codeMax = 9999
)

type numericCodeGenerator struct{}

// NewNumericCodeGenerator returns a SessionCodeGenerator producing random
// four-digit codes.
func NewNumericCodeGenerator() domain.SessionCodeGenerator {
	return numericCodeGenerator{}
}

func (numericCodeGenerator) Generate() (string, error) {
	span := big.NewInt(codeMax - codeMin + 1)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", codeMin+n.Int64()), nil
}
