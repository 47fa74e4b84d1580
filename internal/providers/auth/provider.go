package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"github.com/bitcoin-os/shell/internal/providers/wallet"
	"github.com/bitcoin-os/shell/internal/shared/types"
	"github.com/bitcoin-os/shell/internal/shared/utils"
	"go.uber.org/zap"
)

// Config configures the auth provider
type Config struct {
	JWTSecret    string
	SessionTTL   time.Duration
	ChallengeTTL time.Duration
}

// Provider implements wallet-signature authentication and session tokens
type Provider struct {
	challenges *challenges
	tokens     *tokens
	logger     *zap.Logger
}

// NewProvider creates an auth provider. An empty JWT secret leaves the
// provider registered but answering 503 for token operations.
func NewProvider(cfg Config, store storage.Store, logger *zap.Logger) *Provider {
	return newProvider(cfg, store, logger, time.Now)
}

func newProvider(cfg Config, store storage.Store, logger *zap.Logger, now func() time.Time) *Provider {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.ChallengeTTL <= 0 {
		cfg.ChallengeTTL = 5 * time.Minute
	}
	return &Provider{
		challenges: newChallenges(cfg.ChallengeTTL, now),
		tokens: &tokens{
			secret: []byte(cfg.JWTSecret),
			ttl:    cfg.SessionTTL,
			store:  store,
			now:    now,
		},
		logger: logging.OrNop(logger).Named("auth"),
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "auth",
		Name:        "Authentication Service",
		Description: "Wallet signature login and session tokens",
		Category:    types.CategoryAuth,
		Capabilities: []string{
			"challenge",
			"verify",
			"session",
			"logout",
		},
		Tools: []types.Tool{
			{
				ID:          "auth.challenge",
				Name:        "Issue Challenge",
				Description: "Create a one-time message for the wallet to sign",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "auth.verify",
				Name:        "Verify Signature",
				Description: "Verify a signed challenge and open a session",
				Parameters: []types.Parameter{
					{Name: "signature", Type: "string", Description: "DER signature (hex)", Required: true},
					{Name: "publicKey", Type: "string", Description: "secp256k1 public key (hex)", Required: true},
					{Name: "challenge", Type: "string", Description: "Issued challenge", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "auth.session",
				Name:        "Check Session",
				Description: "Validate a session token",
				Parameters: []types.Parameter{
					{Name: "token", Type: "string", Description: "Session token", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "auth.logout",
				Name:        "Logout",
				Description: "Revoke a session token",
				Parameters: []types.Parameter{
					{Name: "token", Type: "string", Description: "Session token", Required: true},
				},
				Returns: "object",
			},
		},
	}
}

// Execute runs an auth operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "auth.challenge":
		return p.challenge()
	case "auth.verify":
		return p.verify(params)
	case "auth.session":
		return p.session(ctx, params)
	case "auth.logout":
		return p.logout(ctx, params)
	default:
		return types.Failure(fmt.Sprintf("unknown action: %s", toolID))
	}
}

// Stats reports outstanding challenges
func (p *Provider) Stats() map[string]interface{} {
	return map[string]interface{}{
		"pending_challenges": p.challenges.count(),
		"configured":         p.configured(),
	}
}

func (p *Provider) configured() bool {
	return len(p.tokens.secret) > 0
}

func (p *Provider) challenge() (*types.Result, error) {
	c, err := p.challenges.issue()
	if err != nil {
		return nil, fmt.Errorf("issue challenge: %w", err)
	}
	return types.Success(map[string]interface{}{
		"challenge":  c.Value,
		"expires_at": c.ExpiresAt,
	})
}

func (p *Provider) verify(params map[string]interface{}) (*types.Result, error) {
	signature := utils.StringParam(params, "signature")
	publicKey := utils.StringParam(params, "publicKey")
	challenge := utils.StringParam(params, "challenge")
	if signature == "" || publicKey == "" || challenge == "" {
		return types.FailureStatus(http.StatusUnauthorized, "Missing required fields")
	}

	if !p.configured() {
		return types.FailureStatus(http.StatusServiceUnavailable, "Authentication is not configured")
	}

	if !p.challenges.outstanding(challenge) {
		return types.FailureStatus(http.StatusUnauthorized, "Unknown or expired challenge")
	}

	pub, err := wallet.ParsePublicKey(publicKey)
	if err != nil {
		return types.FailureStatus(http.StatusUnauthorized, "Invalid public key")
	}
	ok, err := wallet.VerifyMessage(pub, []byte(challenge), signature)
	if err != nil || !ok {
		p.logger.Info("signature rejected", zap.String("public_key", publicKey))
		return types.FailureStatus(http.StatusUnauthorized, "Invalid signature")
	}

	if !p.challenges.consume(challenge) {
		return types.FailureStatus(http.StatusUnauthorized, "Unknown or expired challenge")
	}

	address := wallet.Address(pub)
	token, claims, err := p.tokens.issue(publicKey, address)
	if err != nil {
		return nil, err
	}

	p.logger.Info("session opened", zap.String("address", address))
	return types.Success(map[string]interface{}{
		"token":      token,
		"publicKey":  publicKey,
		"address":    address,
		"expires_at": claims.ExpiresAt.Time,
	})
}

func (p *Provider) session(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	raw := utils.StringParam(params, "token")
	if raw == "" {
		return types.FailureStatus(http.StatusUnauthorized, "token required")
	}
	if !p.configured() {
		return types.FailureStatus(http.StatusServiceUnavailable, "Authentication is not configured")
	}

	claims, err := p.tokens.validate(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrTokenRevoked) {
			return types.FailureStatus(http.StatusUnauthorized, "Session revoked")
		}
		return types.FailureStatus(http.StatusUnauthorized, "Invalid session")
	}

	return types.Success(map[string]interface{}{
		"valid":      true,
		"publicKey":  claims.Subject,
		"address":    claims.Address,
		"expires_at": claims.ExpiresAt.Time,
	})
}

func (p *Provider) logout(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	raw := utils.StringParam(params, "token")
	if raw == "" {
		return types.FailureStatus(http.StatusUnauthorized, "token required")
	}
	if !p.configured() {
		return types.FailureStatus(http.StatusServiceUnavailable, "Authentication is not configured")
	}

	claims, err := p.tokens.revoke(ctx, raw)
	if errors.Is(err, errInvalidToken) {
		return types.FailureStatus(http.StatusUnauthorized, "Invalid session")
	}
	if err != nil {
		return nil, err
	}

	p.logger.Info("session revoked", zap.String("address", claims.Address))
	return types.Success(map[string]interface{}{"revoked": true})
}
