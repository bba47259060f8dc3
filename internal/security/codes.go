package security

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	// HexAlphabet is used for family invite codes.
	HexAlphabet = "0123456789ABCDEF"
	// PasswordAlphabet leaves out characters that are easy to misread.
	PasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

	MinTemporaryPasswordLength = 8
)

var (
	ErrInvalidLength = errors.New("length must be positive")
	ErrEmptyAlphabet = errors.New("alphabet must not be empty")
)

// RandomString draws length characters uniformly from alphabet using crypto/rand.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", ErrInvalidLength
	}
	if alphabet == "" {
		return "", ErrEmptyAlphabet
	}

	size := big.NewInt(int64(len(alphabet)))
	var builder strings.Builder
	builder.Grow(length)
	for builder.Len() < length {
		position, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[position.Int64()])
	}
	return builder.String(), nil
}

// GroupedCode joins prefix and random groups with dashes, e.g. CL-1A2B-3C4D
// for GroupedCode("CL", HexAlphabet, 4, 4).
func GroupedCode(prefix string, alphabet string, groups ...int) (string, error) {
	parts := make([]string, 0, len(groups)+1)
	if prefix != "" {
		parts = append(parts, prefix)
	}
	for _, size := range groups {
		if size <= 0 {
			return "", ErrInvalidLength
		}
		group, err := RandomString(size, alphabet)
		if err != nil {
			return "", err
		}
		parts = append(parts, group)
	}
	return strings.Join(parts, "-"), nil
}

// TemporaryPassword returns a random password of at least
// MinTemporaryPasswordLength characters.
func TemporaryPassword(length int) (string, error) {
	if length < MinTemporaryPasswordLength {
		length = MinTemporaryPasswordLength
	}
	return RandomString(length, PasswordAlphabet)
}
