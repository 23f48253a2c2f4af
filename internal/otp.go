package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

// NewCode returns a fixed-width numeric one-time code. Each digit is an
// independent uniform draw from crypto/rand, so the result is uniform
// over [0, 10^digits) and generation time does not depend on the value.
func NewCode(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("invalid code width")
	}

	var b strings.Builder
	b.Grow(digits)

	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
