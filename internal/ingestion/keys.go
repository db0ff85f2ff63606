package ingestion

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// keyPrefix is the chain's public-key address prefix.
const keyPrefix = "STM"

// decodedKeyLen is the decoded payload size: a 33-byte compressed
// secp256k1 point followed by a 4-byte checksum.
const decodedKeyLen = 37

// ValidatePublicKey checks that a key string is a well-formed
// STM-prefixed base58 public key. It validates shape only; the
// checksum is not recomputed.
func ValidatePublicKey(key string) error {
	if !strings.HasPrefix(key, keyPrefix) {
		return fmt.Errorf("public key missing %s prefix", keyPrefix)
	}

	decoded, err := base58.Decode(key[len(keyPrefix):])
	if err != nil {
		return fmt.Errorf("public key is not base58: %w", err)
	}
	if len(decoded) != decodedKeyLen {
		return fmt.Errorf("public key decodes to %d bytes, want %d", len(decoded), decodedKeyLen)
	}
	return nil
}
