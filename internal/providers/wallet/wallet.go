package wallet

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrLocked           = errors.New("wrong passphrase")
)

// Identity is a wallet key pair as seen by clients
type Identity struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	PublicKey string    `json:"public_key"`
	Address   string    `json:"address"`
	Network   string    `json:"network"`
	CreatedAt time.Time `json:"created_at"`
}

// IdentityOptions customizes identity creation
type IdentityOptions struct {
	Label string
	// Passphrase protects the private key; empty uses the vault secret.
	Passphrase string
}

// Wallet manages identities and signs with them
type Wallet interface {
	CreateIdentity(ctx context.Context, opts IdentityOptions) (*Identity, error)
	ListIdentities(ctx context.Context) ([]Identity, error)
	GetIdentity(ctx context.Context, identityID string) (*Identity, error)
	Sign(ctx context.Context, identityID string, message []byte, passphrase string) (string, error)
	Verify(publicKey string, message []byte, signature string) (bool, error)
	Encrypt(ctx context.Context, identityID string, plaintext []byte) (string, error)
	Decrypt(ctx context.Context, identityID, ciphertext, passphrase string) ([]byte, error)
}

type vaultEntry struct {
	Identity Identity `json:"identity"`
	Key      *sealed  `json:"key"`
}

// BSV is a Wallet holding BSV mainnet P2PKH identities
type BSV struct {
	store  *HybridStorage
	secret string
	logger *zap.Logger
}

// NewBSV creates a wallet. An empty vaultSecret is replaced by a random
// per-process secret, so identities created without a passphrase cannot be
// unlocked after a restart.
func NewBSV(store *HybridStorage, vaultSecret string, logger *zap.Logger) *BSV {
	logger = logging.OrNop(logger).Named("wallet")
	if vaultSecret == "" {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		vaultSecret = hex.EncodeToString(buf)
		logger.Warn("WALLET_VAULT_SECRET not set, using an ephemeral vault secret")
	}
	return &BSV{store: store, secret: vaultSecret, logger: logger}
}

func (w *BSV) passphrase(p string) string {
	if p == "" {
		return w.secret
	}
	return p
}

// CreateIdentity generates and stores a new key pair
func (w *BSV) CreateIdentity(ctx context.Context, opts IdentityOptions) (*Identity, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	defer key.Zero()

	pub := key.PubKey()
	identity := Identity{
		ID:        uuid.NewString(),
		Label:     strings.TrimSpace(opts.Label),
		PublicKey: hex.EncodeToString(pub.SerializeCompressed()),
		Address:   Address(pub),
		Network:   "mainnet",
		CreatedAt: time.Now().UTC(),
	}

	sealedKey, err := seal(w.passphrase(opts.Passphrase), key.Serialize())
	if err != nil {
		return nil, fmt.Errorf("seal key: %w", err)
	}
	if err := w.store.put(ctx, identity.ID, vaultEntry{Identity: identity, Key: sealedKey}); err != nil {
		return nil, fmt.Errorf("store identity: %w", err)
	}

	w.logger.Info("identity created", zap.String("id", identity.ID), zap.String("address", identity.Address))
	return &identity, nil
}

// ListIdentities returns identities oldest first
func (w *BSV) ListIdentities(ctx context.Context) ([]Identity, error) {
	entries, err := w.store.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	out := make([]Identity, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Identity)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// GetIdentity returns one identity
func (w *BSV) GetIdentity(ctx context.Context, identityID string) (*Identity, error) {
	entry, err := w.entry(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return &entry.Identity, nil
}

// Sign signs sha256(message) with the identity key
func (w *BSV) Sign(ctx context.Context, identityID string, message []byte, passphrase string) (string, error) {
	key, err := w.unlock(ctx, identityID, passphrase)
	if err != nil {
		return "", err
	}
	defer key.Zero()
	return SignMessage(key, message), nil
}

// Verify checks a signature against any public key
func (w *BSV) Verify(publicKey string, message []byte, signature string) (bool, error) {
	pub, err := ParsePublicKey(publicKey)
	if err != nil {
		return false, err
	}
	return VerifyMessage(pub, message, signature)
}

// Encrypt seals plaintext for the identity; only its key can open it
func (w *BSV) Encrypt(ctx context.Context, identityID string, plaintext []byte) (string, error) {
	entry, err := w.entry(ctx, identityID)
	if err != nil {
		return "", err
	}
	pub, err := ParsePublicKey(entry.Identity.PublicKey)
	if err != nil {
		return "", err
	}
	out, err := encryptTo(pub, plaintext)
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	return hex.EncodeToString(out), nil
}

// Decrypt opens a payload produced by Encrypt
func (w *BSV) Decrypt(ctx context.Context, identityID, ciphertext, passphrase string) ([]byte, error) {
	payload, err := hex.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	key, err := w.unlock(ctx, identityID, passphrase)
	if err != nil {
		return nil, err
	}
	defer key.Zero()
	return decryptWith(key, payload)
}

func (w *BSV) entry(ctx context.Context, identityID string) (*vaultEntry, error) {
	var entry vaultEntry
	if err := w.store.get(ctx, identityID, &entry); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}
	return &entry, nil
}

func (w *BSV) unlock(ctx context.Context, identityID, passphrase string) (*secp256k1.PrivateKey, error) {
	entry, err := w.entry(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if entry.Key == nil {
		return nil, fmt.Errorf("identity %s has no key material", identityID)
	}
	raw, err := entry.Key.open(w.passphrase(passphrase))
	if err != nil {
		return nil, ErrLocked
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}
