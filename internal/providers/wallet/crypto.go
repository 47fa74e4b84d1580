package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize         = 16
	keySize          = 32
	pbkdf2Iterations = 210_000
)

// ErrDecrypt is returned when a ciphertext fails authentication
var ErrDecrypt = errors.New("decryption failed")

// sealed is a private key encrypted at rest
type sealed struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
}

func seal(passphrase string, plaintext []byte) (*sealed, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	gcm, err := newGCM(deriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return &sealed{Salt: salt, Nonce: nonce, Ciphertext: gcm.Seal(nil, nonce, plaintext, nil)}, nil
}

func (s *sealed) open(passphrase string) ([]byte, error) {
	gcm, err := newGCM(deriveKey(passphrase, s.Salt))
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, s.Nonce, s.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// encryptTo encrypts for the holder of pub: ephemeral pubkey (33) || nonce || ciphertext
func encryptTo(pub *secp256k1.PublicKey, plaintext []byte) ([]byte, error) {
	ephemeral, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	shared := sha256.Sum256(secp256k1.GenerateSharedSecret(ephemeral, pub))
	gcm, err := newGCM(shared[:])
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	out := append([]byte(nil), ephemeral.PubKey().SerializeCompressed()...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

func decryptWith(key *secp256k1.PrivateKey, payload []byte) ([]byte, error) {
	const pubLen = secp256k1.PubKeyBytesLenCompressed
	if len(payload) < pubLen+12 {
		return nil, fmt.Errorf("%w: payload too short", ErrDecrypt)
	}
	ephemeral, err := secp256k1.ParsePubKey(payload[:pubLen])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	shared := sha256.Sum256(secp256k1.GenerateSharedSecret(key, ephemeral))
	gcm, err := newGCM(shared[:])
	if err != nil {
		return nil, err
	}
	rest := payload[pubLen:]
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
