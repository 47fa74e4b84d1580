package wallet

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bitcoin-os/shell/internal/shared/types"
	"github.com/bitcoin-os/shell/internal/shared/utils"
)

// Provider exposes a Wallet as the "wallet" integration service
type Provider struct {
	wallet Wallet
}

// NewProvider wraps a wallet
func NewProvider(w Wallet) *Provider {
	return &Provider{wallet: w}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	identityParam := types.Parameter{Name: "identity_id", Type: "string", Description: "Identity ID", Required: true}
	passphraseParam := types.Parameter{Name: "passphrase", Type: "string", Description: "Key passphrase", Required: false}

	return types.Service{
		ID:          "wallet",
		Name:        "BSV Wallet",
		Description: "Bitcoin SV identities, signing and encryption",
		Category:    types.CategoryWallet,
		Capabilities: []string{
			"create_identity",
			"list_identities",
			"sign",
			"verify",
			"encrypt",
			"decrypt",
		},
		Tools: []types.Tool{
			{
				ID:          "wallet.create_identity",
				Name:        "Create Identity",
				Description: "Generate a new key pair and P2PKH address",
				Parameters: []types.Parameter{
					{Name: "options", Type: "object", Description: "label, passphrase", Required: false},
				},
				Returns: "object",
			},
			{ID: "wallet.list_identities", Name: "List Identities", Parameters: []types.Parameter{}, Returns: "array"},
			{ID: "wallet.get_identity", Name: "Get Identity", Parameters: []types.Parameter{identityParam}, Returns: "object"},
			{
				ID:   "wallet.sign",
				Name: "Sign Message",
				Parameters: []types.Parameter{
					identityParam,
					{Name: "message", Type: "string", Description: "Message to sign", Required: true},
					passphraseParam,
				},
				Returns: "object",
			},
			{
				ID:   "wallet.verify",
				Name: "Verify Signature",
				Parameters: []types.Parameter{
					{Name: "publicKey", Type: "string", Description: "Public key (hex)", Required: true},
					{Name: "message", Type: "string", Description: "Signed message", Required: true},
					{Name: "signature", Type: "string", Description: "DER signature (hex)", Required: true},
					{Name: "address", Type: "string", Description: "Expected signer address", Required: false},
				},
				Returns: "object",
			},
			{
				ID:   "wallet.encrypt",
				Name: "Encrypt",
				Parameters: []types.Parameter{
					identityParam,
					{Name: "data", Type: "string", Description: "Plaintext", Required: true},
				},
				Returns: "object",
			},
			{
				ID:   "wallet.decrypt",
				Name: "Decrypt",
				Parameters: []types.Parameter{
					identityParam,
					{Name: "data", Type: "string", Description: "Ciphertext (hex)", Required: true},
					passphraseParam,
				},
				Returns: "object",
			},
		},
	}
}

// Execute runs a wallet operation. Wallet failures surface as errors so
// the route answers 500.
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "wallet.create_identity":
		return p.createIdentity(ctx, params)
	case "wallet.list_identities":
		return p.listIdentities(ctx)
	case "wallet.get_identity":
		return p.getIdentity(ctx, params)
	case "wallet.sign":
		return p.sign(ctx, params)
	case "wallet.verify":
		return p.verify(params)
	case "wallet.encrypt":
		return p.encrypt(ctx, params)
	case "wallet.decrypt":
		return p.decrypt(ctx, params)
	default:
		return types.Failure(fmt.Sprintf("unknown action: %s", toolID))
	}
}

func (p *Provider) createIdentity(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	opts := utils.MapParam(params, "options")
	if err := utils.ValidateString(utils.StringParam(opts, "label"), "label", 0, utils.MaxNameLength, false); err != nil {
		return types.Failure(err.Error())
	}

	identity, err := p.wallet.CreateIdentity(ctx, IdentityOptions{
		Label:      utils.StringParam(opts, "label"),
		Passphrase: utils.StringParam(opts, "passphrase"),
	})
	if err != nil {
		return nil, err
	}
	return types.Success(map[string]interface{}{"identity": identity})
}

func (p *Provider) listIdentities(ctx context.Context) (*types.Result, error) {
	identities, err := p.wallet.ListIdentities(ctx)
	if err != nil {
		return nil, err
	}
	return types.Success(map[string]interface{}{
		"identities": identities,
		"count":      len(identities),
	})
}

func (p *Provider) getIdentity(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	identityID, res := requireIdentity(params)
	if res != nil {
		return res, nil
	}
	identity, err := p.wallet.GetIdentity(ctx, identityID)
	if err != nil {
		return walletFailure(err)
	}
	return types.Success(map[string]interface{}{"identity": identity})
}

func (p *Provider) sign(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	identityID, res := requireIdentity(params)
	if res != nil {
		return res, nil
	}
	message := utils.StringParam(params, "message")
	if message == "" {
		return types.Failure("message required")
	}

	signature, err := p.wallet.Sign(ctx, identityID, []byte(message), utils.StringParam(params, "passphrase"))
	if err != nil {
		return walletFailure(err)
	}
	return types.Success(map[string]interface{}{"signature": signature})
}

func (p *Provider) verify(params map[string]interface{}) (*types.Result, error) {
	publicKey := utils.StringParam(params, "publicKey")
	message := utils.StringParam(params, "message")
	signature := utils.StringParam(params, "signature")
	if publicKey == "" || message == "" || signature == "" {
		return types.Failure("publicKey, message and signature required")
	}

	address := utils.StringParam(params, "address")
	if address != "" && !ValidAddress(address) {
		return types.Failure(fmt.Sprintf("invalid address: %s", address))
	}

	valid, err := p.wallet.Verify(publicKey, []byte(message), signature)
	if err != nil {
		return types.Failure(err.Error())
	}
	if valid && address != "" {
		pub, err := ParsePublicKey(publicKey)
		valid = err == nil && Address(pub) == address
	}
	return types.Success(map[string]interface{}{"valid": valid})
}

func (p *Provider) encrypt(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	identityID, res := requireIdentity(params)
	if res != nil {
		return res, nil
	}
	data := utils.StringParam(params, "data")
	if data == "" {
		return types.Failure("data required")
	}

	ciphertext, err := p.wallet.Encrypt(ctx, identityID, []byte(data))
	if err != nil {
		return walletFailure(err)
	}
	return types.Success(map[string]interface{}{"data": ciphertext})
}

func (p *Provider) decrypt(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	identityID, res := requireIdentity(params)
	if res != nil {
		return res, nil
	}
	data := utils.StringParam(params, "data")
	if data == "" {
		return types.Failure("data required")
	}

	plaintext, err := p.wallet.Decrypt(ctx, identityID, data, utils.StringParam(params, "passphrase"))
	if err != nil {
		return walletFailure(err)
	}
	return types.Success(map[string]interface{}{"data": string(plaintext)})
}

func requireIdentity(params map[string]interface{}) (string, *types.Result) {
	identityID := utils.StringParam(params, "identity_id")
	if identityID == "" {
		res, _ := types.Failure("identity_id required")
		return "", res
	}
	return identityID, nil
}

// walletFailure maps caller mistakes to 4xx and everything else to an error
func walletFailure(err error) (*types.Result, error) {
	switch {
	case errors.Is(err, ErrIdentityNotFound):
		return types.FailureStatus(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrLocked):
		return types.FailureStatus(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrDecrypt):
		return types.Failure(err.Error())
	default:
		return nil, err
	}
}
