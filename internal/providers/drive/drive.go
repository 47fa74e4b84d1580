package drive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/infrastructure/storage"
	"github.com/bitcoin-os/shell/internal/shared/id"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// DefaultMaxBytes caps a single upload
const DefaultMaxBytes int64 = 25 << 20

var (
	ErrFileNotFound = errors.New("file not found")
	ErrTooLarge     = errors.New("file exceeds upload limit")
	ErrEmptyFile    = errors.New("file is empty")
	ErrInvalidName  = errors.New("invalid file name")
)

// File is drive file metadata
type File struct {
	ID        id.FileID `json:"id"`
	Name      string    `json:"name"`
	MIMEType  string    `json:"mime_type"`
	Extension string    `json:"extension,omitempty"`
	Size      int64     `json:"size"`
	SHA256    string    `json:"sha256"`
	Owner     string    `json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Drive stores uploaded files in the shell store
type Drive struct {
	store    storage.Store
	maxBytes int64
	logger   *zap.Logger
}

// New creates a drive. maxBytes <= 0 uses DefaultMaxBytes.
func New(store storage.Store, maxBytes int64, logger *zap.Logger) *Drive {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Drive{store: store, maxBytes: maxBytes, logger: logging.OrNop(logger).Named("drive")}
}

// MaxBytes returns the upload limit
func (d *Drive) MaxBytes() int64 {
	return d.maxBytes
}

// Upload reads r fully, sniffs its type and stores it
func (d *Drive) Upload(ctx context.Context, name, owner string, r io.Reader) (*File, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	mt := mimetype.Detect(data)
	sum := sha256.Sum256(data)
	file := &File{
		ID:        id.NewFileID(),
		Name:      name,
		MIMEType:  mt.String(),
		Extension: mt.Extension(),
		Size:      int64(len(data)),
		SHA256:    hex.EncodeToString(sum[:]),
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
	}

	if err := d.store.Put(ctx, storage.BucketFileData, file.ID.String(), data); err != nil {
		return nil, fmt.Errorf("store file data: %w", err)
	}
	if err := storage.PutJSON(ctx, d.store, storage.BucketFiles, file.ID.String(), file); err != nil {
		_ = d.store.Delete(ctx, storage.BucketFileData, file.ID.String())
		return nil, fmt.Errorf("store file metadata: %w", err)
	}

	d.logger.Info("file uploaded",
		zap.String("id", file.ID.String()),
		zap.String("mime", file.MIMEType),
		zap.Int64("size", file.Size))
	return file, nil
}

// List returns files newest first, optionally limited to one owner
func (d *Drive) List(ctx context.Context, owner string) ([]File, error) {
	files, skipped, err := storage.ListJSON[File](ctx, d.store, storage.BucketFiles)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	if skipped > 0 {
		d.logger.Warn("skipped unreadable file records", zap.Int("count", skipped))
	}

	out := files[:0]
	for _, f := range files {
		if owner == "" || f.Owner == owner {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Stat returns metadata for one file
func (d *Drive) Stat(ctx context.Context, fileID string) (*File, error) {
	var f File
	if err := storage.GetJSON(ctx, d.store, storage.BucketFiles, fileID, &f); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return &f, nil
}

// Open returns metadata and content
func (d *Drive) Open(ctx context.Context, fileID string) (*File, []byte, error) {
	f, err := d.Stat(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := d.store.Get(ctx, storage.BucketFileData, fileID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, err
	}
	return f, data, nil
}

// Delete removes a file
func (d *Drive) Delete(ctx context.Context, fileID string) error {
	if _, err := d.Stat(ctx, fileID); err != nil {
		return err
	}
	if err := d.store.Delete(ctx, storage.BucketFiles, fileID); err != nil {
		return err
	}
	if err := d.store.Delete(ctx, storage.BucketFileData, fileID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	d.logger.Info("file deleted", zap.String("id", fileID))
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if name == "" || name == "." || name == "/" || len(name) > 255 || strings.ContainsRune(name, 0) {
		return "", ErrInvalidName
	}
	return name, nil
}
