package wallet

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"github.com/bitcoin-os/shell/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubWallet struct {
	mock.Mock
	Wallet
}

func (s *stubWallet) CreateIdentity(ctx context.Context, opts IdentityOptions) (*Identity, error) {
	args := s.Called(opts)
	identity, _ := args.Get(0).(*Identity)
	return identity, args.Error(1)
}

func TestCreateIdentityResolves(t *testing.T) {
	w := &stubWallet{}
	w.On("CreateIdentity", IdentityOptions{}).Return(&Identity{ID: "id-1", Address: "1abc"}, nil)

	res, err := NewProvider(w).Execute(context.Background(), "wallet.create_identity",
		map[string]interface{}{"options": map[string]interface{}{}}, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "id-1", res.Data["identity"].(*Identity).ID)
	w.AssertExpectations(t)
}

func TestCreateIdentityRejects(t *testing.T) {
	w := &stubWallet{}
	w.On("CreateIdentity", mock.Anything).Return(nil, errors.New("vault unavailable"))

	res, err := NewProvider(w).Execute(context.Background(), "wallet.create_identity",
		map[string]interface{}{"options": map[string]interface{}{}}, nil)
	assert.Nil(t, res)
	assert.EqualError(t, err, "vault unavailable")
}

func TestProviderActions(t *testing.T) {
	p := NewProvider(NewBSV(NewHybridStorage(storage.NewMemory(), nil, nil), "secret", nil))
	ctx := context.Background()

	res, err := p.Execute(ctx, "wallet.create_identity", map[string]interface{}{
		"options": map[string]interface{}{"label": "work"},
	}, nil)
	require.NoError(t, err)
	identity := res.Data["identity"].(*Identity)

	res, err = p.Execute(ctx, "wallet.sign", map[string]interface{}{
		"identity_id": identity.ID,
		"message":     "hi",
	}, nil)
	require.NoError(t, err)
	require.True(t, res.Success)
	sig := res.Data["signature"].(string)

	res, err = p.Execute(ctx, "wallet.verify", map[string]interface{}{
		"publicKey": identity.PublicKey,
		"message":   "hi",
		"signature": sig,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, true, res.Data["valid"])

	verify := func(address string) *types.Result {
		res, err := p.Execute(ctx, "wallet.verify", map[string]interface{}{
			"publicKey": identity.PublicKey,
			"message":   "hi",
			"signature": sig,
			"address":   address,
		}, nil)
		require.NoError(t, err)
		return res
	}
	assert.Equal(t, true, verify(identity.Address).Data["valid"])

	res, err = p.Execute(ctx, "wallet.create_identity", map[string]interface{}{
		"options": map[string]interface{}{"label": "other"},
	}, nil)
	require.NoError(t, err)
	other := res.Data["identity"].(*Identity)
	assert.Equal(t, false, verify(other.Address).Data["valid"])
	assert.Equal(t, http.StatusBadRequest, verify("1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMX").HTTPStatus())

	res, err = p.Execute(ctx, "wallet.get_identity", map[string]interface{}{"identity_id": "nope"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.HTTPStatus())

	res, err = p.Execute(ctx, "wallet.sign", map[string]interface{}{}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.HTTPStatus())

	res, err = p.Execute(ctx, "wallet.list_identities", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Data["count"])
}
