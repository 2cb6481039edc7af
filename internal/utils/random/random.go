// Package random provides the cryptographically secure source used for
// winner draws. It is deliberately separate from any cosmetic randomness:
// the draw source must stay auditable and must never be swapped for a
// time-seeded generator.
package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CryptoSource draws uniform integers from crypto/rand.
type CryptoSource struct{}

func NewCryptoSource() *CryptoSource {
	return &CryptoSource{}
}

// UniformInt returns a uniformly distributed integer in [0, n).
func (*CryptoSource) UniformInt(n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("uniform bound must be positive, got %d", n)
	}
	value, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return value.Int64(), nil
}
