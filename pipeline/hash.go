package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrInvalidHash is returned when a code hash string cannot be parsed.
var ErrInvalidHash = errors.New("pipeline: invalid code hash")

// upperSeed seeds the digest for the upper half so the two halves are independent.
const upperSeed = 0x9e3779b97f4a7c15

// Hash128 is a 128-bit shader code hash stored as two 64-bit halves.
type Hash128 struct {
	Lower uint64
	Upper uint64
}

// IsZero reports whether both halves are zero.
func (h Hash128) IsZero() bool {
	return h.Lower == 0 && h.Upper == 0
}

// String formats the hash as 0x followed by 32 hex digits, upper half first.
func (h Hash128) String() string {
	return fmt.Sprintf("0x%016x%016x", h.Upper, h.Lower)
}

// ParseHash128 parses a hash in one of the forms
//
//	0x751207727c904749dd6c573c46e6adf8   (upper then lower, 32 digits)
//	751207727c904749dd6c573c46e6adf8
//	0x751207727c904749 0xdd6c573c46e6adf8 (upper, lower)
func ParseHash128(s string) (Hash128, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		digits := trimHexPrefix(fields[0])
		if len(digits) == 0 || len(digits) > 32 {
			return Hash128{}, fmt.Errorf("%w: %q", ErrInvalidHash, s)
		}
		if len(digits) < 32 {
			digits = strings.Repeat("0", 32-len(digits)) + digits
		}
		upper, err := strconv.ParseUint(digits[:16], 16, 64)
		if err != nil {
			return Hash128{}, fmt.Errorf("%w: %q", ErrInvalidHash, s)
		}
		lower, err := strconv.ParseUint(digits[16:], 16, 64)
		if err != nil {
			return Hash128{}, fmt.Errorf("%w: %q", ErrInvalidHash, s)
		}
		return Hash128{Lower: lower, Upper: upper}, nil
	case 2:
		upper, err := strconv.ParseUint(trimHexPrefix(fields[0]), 16, 64)
		if err != nil {
			return Hash128{}, fmt.Errorf("%w: %q", ErrInvalidHash, s)
		}
		lower, err := strconv.ParseUint(trimHexPrefix(fields[1]), 16, 64)
		if err != nil {
			return Hash128{}, fmt.Errorf("%w: %q", ErrInvalidHash, s)
		}
		return Hash128{Lower: lower, Upper: upper}, nil
	default:
		return Hash128{}, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}
}

func trimHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// HashCode computes the 128-bit content hash of shader bytecode.
func HashCode(code []byte) Hash128 {
	d := xxhash.NewWithSeed(upperSeed)
	_, _ = d.Write(code) // Digest.Write never returns an error
	return Hash128{
		Lower: xxhash.Sum64(code),
		Upper: d.Sum64(),
	}
}
