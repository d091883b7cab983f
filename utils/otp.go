package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

var ten = big.NewInt(10)

// GenerateNumericCode returns n decimal digits, each drawn independently and
// uniformly from crypto/rand. Leading zeros are kept.
func GenerateNumericCode(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid code length")
	}
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}

// IsNumericCode reports whether s is exactly n ASCII digits.
func IsNumericCode(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
