// Package code generates numeric one-time codes.
package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the number of digits in a verification code.
const Length = 6

var ten = big.NewInt(10)

// Generate returns a Length-digit code. Every digit is drawn independently
// and uniformly from 0-9, so leading zeros are kept.
func Generate() (string, error) {
	return GenerateN(Length)
}

// GenerateN returns an n-digit numeric code.
func GenerateN(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate code digit: %w", err)
		}
		digits[i] = byte('0' + d.Int64())
	}
	return string(digits), nil
}
