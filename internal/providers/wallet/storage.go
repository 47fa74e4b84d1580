package wallet

import (
	"context"
	"errors"

	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// HybridStorage keeps the identity vault in a primary store and, when
// configured, a mirror. Writes go to both; reads fall back to the mirror
// and heal the primary.
type HybridStorage struct {
	primary storage.Store
	mirror  storage.Store
	logger  *zap.Logger
}

// NewHybridStorage creates vault storage. mirror may be nil.
func NewHybridStorage(primary, mirror storage.Store, logger *zap.Logger) *HybridStorage {
	return &HybridStorage{
		primary: primary,
		mirror:  mirror,
		logger:  logging.OrNop(logger).Named("wallet.storage"),
	}
}

func (h *HybridStorage) put(ctx context.Context, key string, v any) error {
	if err := storage.PutJSON(ctx, h.primary, storage.BucketIdentities, key, v); err != nil {
		return err
	}
	if h.mirror != nil {
		if err := storage.PutJSON(ctx, h.mirror, storage.BucketIdentities, key, v); err != nil {
			h.logger.Warn("mirror write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (h *HybridStorage) get(ctx context.Context, key string, v any) error {
	err := storage.GetJSON(ctx, h.primary, storage.BucketIdentities, key, v)
	if err == nil || h.mirror == nil || !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if err := storage.GetJSON(ctx, h.mirror, storage.BucketIdentities, key, v); err != nil {
		return err
	}
	if err := storage.PutJSON(ctx, h.primary, storage.BucketIdentities, key, v); err != nil {
		h.logger.Warn("primary heal failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (h *HybridStorage) list(ctx context.Context) ([]vaultEntry, error) {
	entries, skipped, err := storage.ListJSON[vaultEntry](ctx, h.primary, storage.BucketIdentities)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		h.logger.Warn("skipped unreadable vault entries", zap.Int("count", skipped))
	}
	if h.mirror == nil {
		return entries, nil
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e.Identity.ID] = true
	}
	mirrored, _, err := storage.ListJSON[vaultEntry](ctx, h.mirror, storage.BucketIdentities)
	if err != nil {
		h.logger.Warn("mirror list failed", zap.Error(err))
		return entries, nil
	}
	for _, e := range mirrored {
		if !seen[e.Identity.ID] {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
