package wallet

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // P2PKH is defined over RIPEMD-160
)

// MainnetP2PKH is the BSV mainnet pay-to-pubkey-hash version byte
const MainnetP2PKH byte = 0x00

var (
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrInvalidSignature = errors.New("invalid signature encoding")
)

// ParsePublicKey decodes a hex compressed or uncompressed secp256k1 key
func ParsePublicKey(hexKey string) (*secp256k1.PublicKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return pub, nil
}

// Address derives the base58check P2PKH address of a public key
func Address(pub *secp256k1.PublicKey) string {
	sha := sha256.Sum256(pub.SerializeCompressed())
	h := ripemd160.New()
	h.Write(sha[:])

	payload := make([]byte, 0, 25)
	payload = append(payload, MainnetP2PKH)
	payload = h.Sum(payload)

	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	payload = append(payload, second[:4]...)
	return base58.Encode(payload)
}

// ValidAddress checks the version byte and checksum of a P2PKH address
func ValidAddress(addr string) bool {
	raw, err := base58.Decode(addr)
	if err != nil || len(raw) != 25 || raw[0] != MainnetP2PKH {
		return false
	}
	first := sha256.Sum256(raw[:21])
	second := sha256.Sum256(first[:])
	return string(second[:4]) == string(raw[21:])
}

// SignMessage signs sha256(message) and returns the DER signature in hex
func SignMessage(key *secp256k1.PrivateKey, message []byte) string {
	digest := sha256.Sum256(message)
	return hex.EncodeToString(ecdsa.Sign(key, digest[:]).Serialize())
}

// VerifyMessage checks a hex DER signature over sha256(message)
func VerifyMessage(pub *secp256k1.PublicKey, message []byte, sigHex string) (bool, error) {
	raw, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	sig, err := ecdsa.ParseDERSignature(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	digest := sha256.Sum256(message)
	return sig.Verify(digest[:], pub), nil
}
