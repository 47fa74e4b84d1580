package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "bitcoin-os"

// ErrTokenRevoked is returned for a token that was logged out
var ErrTokenRevoked = errors.New("token revoked")

var errInvalidToken = errors.New("invalid token")

// Claims are carried in session tokens. Subject is the compressed public
// key in hex.
type Claims struct {
	Address string `json:"addr,omitempty"`
	jwt.RegisteredClaims
}

type revocation struct {
	TokenID   string    `json:"jti"`
	ExpiresAt time.Time `json:"expires_at"`
	RevokedAt time.Time `json:"revoked_at"`
}

type tokens struct {
	secret []byte
	ttl    time.Duration
	store  storage.Store
	now    func() time.Time
}

func (t *tokens) issue(publicKey, address string) (string, *Claims, error) {
	now := t.now()
	claims := &Claims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   publicKey,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// parse validates signature and expiry. Revocation is checked by validate.
func (t *tokens) parse(raw string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(t.now),
	)
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *tokens) validate(ctx context.Context, raw string) (*Claims, error) {
	claims, err := t.parse(raw)
	if err != nil {
		return nil, err
	}
	_, err = t.store.Get(ctx, storage.BucketRevocations, claims.ID)
	switch {
	case err == nil:
		return nil, ErrTokenRevoked
	case errors.Is(err, storage.ErrNotFound):
		return claims, nil
	default:
		return nil, fmt.Errorf("check revocation: %w", err)
	}
}

// revoke records the token id; expired tokens are accepted so a client can
// always log out.
func (t *tokens) revoke(ctx context.Context, raw string) (*Claims, error) {
	claims, err := t.parse(raw, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	rev := revocation{TokenID: claims.ID, RevokedAt: t.now()}
	if claims.ExpiresAt != nil {
		rev.ExpiresAt = claims.ExpiresAt.Time
	}
	if err := storage.PutJSON(ctx, t.store, storage.BucketRevocations, claims.ID, rev); err != nil {
		return nil, fmt.Errorf("store revocation: %w", err)
	}
	return claims, nil
}
