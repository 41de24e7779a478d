package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice/internal/storage"
)

// sniffLen is how many leading bytes are inspected to detect the content type.
const sniffLen = 512

// MediaService stores images in object storage and hands out download URLs.
type MediaService interface {
	// Upload stores an image under "<prefix>/<uuid><ext>" and returns its key.
	// Only image/* content, detected from the bytes, is accepted.
	Upload(ctx context.Context, r io.Reader, filename string, size int64, prefix string) (string, error)
	// URL returns a presigned GET URL for key, or "" when key is empty or signing fails.
	URL(ctx context.Context, key string) string
	// Delete removes the object; an empty key is a no-op.
	Delete(ctx context.Context, key string) error
}

type mediaService struct {
	store  storage.Storage
	expiry time.Duration
	log    *zap.Logger
}

// NewMediaService constructs a MediaService.
func NewMediaService(store storage.Storage, expiry time.Duration, log *zap.Logger) MediaService {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &mediaService{store: store, expiry: expiry, log: log}
}

func (s *mediaService) Upload(ctx context.Context, r io.Reader, filename string, size int64, prefix string) (string, error) {
	if r == nil {
		return "", ErrReaderNil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mt.String())
	}

	ext := mt.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	key := path.Join(prefix, uuid.New().String()+ext)

	info, err := s.store.Put(ctx, key, io.MultiReader(bytes.NewReader(head), r), storage.PutOptions{
		Size:        size,
		ContentType: mt.String(),
		Filename:    filepath.Base(filename),
	})
	if err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}
	if info.Key != "" {
		key = info.Key
	}
	return key, nil
}

func (s *mediaService) URL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	u, err := s.store.PresignGet(ctx, key, s.expiry)
	if err != nil {
		s.log.Warn("presign failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return u
}

func (s *mediaService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return nil
}

// replaceImage uploads a new image, persists it with save and then removes
// the previous object. A failed save deletes the new object again.
func replaceImage(ctx context.Context, media MediaService, log *zap.Logger, oldKey, prefix string,
	r io.Reader, filename string, size int64, save func(key string) error) error {
	key, err := media.Upload(ctx, r, filename, size, prefix)
	if err != nil {
		return err
	}
	if err := save(key); err != nil {
		if delErr := media.Delete(ctx, key); delErr != nil {
			return fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return fmt.Errorf("db save failed: %w", err)
	}
	if oldKey != "" && oldKey != key {
		if err := media.Delete(ctx, oldKey); err != nil {
			log.Warn("orphaned object", zap.String("key", oldKey), zap.Error(err))
		}
	}
	return nil
}
