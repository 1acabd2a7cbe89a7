package wallet

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/blake2b"
)

const (
	vkeySize    = 32
	keyHashSize = 28
)

// cborBytes32 is the CBOR header of a 32-byte bytestring, as found in
// the cborHex of key envelope files.
var cborBytes32 = []byte{0x58, 0x20}

// VKeyHash returns the hex blake2b-224 hash of an ed25519 verification
// key given as plain hex or CBOR hex.
func VKeyHash(vkey string) (string, error) {
	vkey = strings.TrimSpace(vkey)
	if vkey == "" {
		return "", fmt.Errorf("empty verification key")
	}
	for _, c := range strings.TrimPrefix(strings.TrimPrefix(vkey, "0x"), "0X") {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return "", fmt.Errorf("verification key is not hex")
		}
	}

	raw := common.FromHex(vkey)
	if len(raw) == vkeySize+len(cborBytes32) && raw[0] == cborBytes32[0] && raw[1] == cborBytes32[1] {
		raw = raw[len(cborBytes32):]
	}
	if len(raw) != vkeySize {
		return "", fmt.Errorf("verification key must be %d bytes, got %d", vkeySize, len(raw))
	}

	h, err := blake2b.New(keyHashSize, nil)
	if err != nil {
		return "", err
	}
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil)), nil
}
