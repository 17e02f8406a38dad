package identity

import (
	"strings"

	"ms-passes/internal/apperrors"
)

const (
	minLen = 3
	maxLen = 90
)

// Validate checks an externally supplied address-like string before it is
// stored or compared. Platform addresses are lowercase alphanumeric with a
// letter prefix, bech32-style; this does not verify a checksum, only the
// format.
func Validate(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if len(addr) < minLen || len(addr) > maxLen {
		return "", apperrors.ErrInvalidIdentity
	}
	for _, c := range addr {
		if !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') {
			return "", apperrors.ErrInvalidIdentity
		}
	}
	if addr[0] < 'a' || addr[0] > 'z' {
		return "", apperrors.ErrInvalidIdentity
	}
	return addr, nil
}
