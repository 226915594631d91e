package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrTooLarge    = errors.New("file too large")
	ErrUnsupported = errors.New("unsupported file type")
)

const defaultMaxSize = 5 << 20

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

type Upload struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Service struct {
	storage ObjectStorage
	maxSize int64
	now     func() time.Time
}

func NewService(storage ObjectStorage, maxSize int64) *Service {
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}

	return &Service{
		storage: storage,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// UploadImage stores an image and returns its public URL. Callers put
// the URL on an avatar, poster or backdrop field themselves.
func (s *Service) UploadImage(ctx context.Context, accountID int64, fileName, contentType string, body io.Reader, size int64) (Upload, error) {
	if accountID <= 0 || body == nil || size <= 0 {
		return Upload{}, ErrValidation
	}
	if size > s.maxSize {
		return Upload{}, ErrTooLarge
	}
	if _, ok := allowedContentTypes[strings.ToLower(strings.TrimSpace(contentType))]; !ok {
		return Upload{}, ErrUnsupported
	}
	if s.storage == nil {
		return Upload{}, fmt.Errorf("object storage is not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Upload{}, fmt.Errorf("ensure bucket: %w", err)
	}

	key := buildObjectKey(accountID, fileName, s.now().UTC())

	if err := s.storage.PutObject(ctx, key, body, size, contentType); err != nil {
		return Upload{}, fmt.Errorf("put object: %w", err)
	}

	return Upload{
		Key:        key,
		URL:        s.storage.PublicURL(key),
		UploadedAt: s.now().UTC(),
	}, nil
}

func buildObjectKey(accountID int64, fileName string, now time.Time) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := now.Format("20060102T150405")
	return fmt.Sprintf("uploads/%d/%s_%s%s", accountID, stamp, uuid.NewString(), ext)
}
