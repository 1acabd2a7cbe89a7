package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic is returned for phrases that fail BIP-39 validation.
var ErrInvalidMnemonic = errors.New("invalid mnemonic phrase (must be 12/15/18/21/24 BIP-39 words)")

// NormalizeMnemonic lower-cases the phrase and collapses whitespace.
func NormalizeMnemonic(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// ValidateMnemonic checks word list membership, length and checksum.
func ValidateMnemonic(phrase string) error {
	normalized := NormalizeMnemonic(phrase)
	if normalized == "" {
		return fmt.Errorf("%w: empty phrase", ErrInvalidMnemonic)
	}
	if _, err := bip39.EntropyFromMnemonic(normalized); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}
	return nil
}
