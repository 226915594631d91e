package uploads

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type fakeStorage struct {
	putKeys []string
}

func (f *fakeStorage) EnsureBucket(_ context.Context) error {
	return nil
}

func (f *fakeStorage) PutObject(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	f.putKeys = append(f.putKeys, key)
	return nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return "https://cdn.local/media/" + key
}

func (f *fakeStorage) Delete(_ context.Context, _ string) error {
	return nil
}

func TestUploadImage(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewService(storage, 1024)

	upload, err := svc.UploadImage(context.Background(), 7, "poster.png", "image/png", strings.NewReader("abc"), 3)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(upload.Key, "uploads/7/") || !strings.HasSuffix(upload.Key, ".png") {
		t.Fatalf("unexpected object key: %q", upload.Key)
	}
	if upload.URL != "https://cdn.local/media/"+upload.Key {
		t.Fatalf("unexpected public url: %q", upload.URL)
	}
	if len(storage.putKeys) != 1 {
		t.Fatalf("expected one stored object, got %d", len(storage.putKeys))
	}
}

func TestUploadImageRejectsBadInput(t *testing.T) {
	svc := NewService(&fakeStorage{}, 10)
	ctx := context.Background()

	if _, err := svc.UploadImage(ctx, 7, "big.png", "image/png", strings.NewReader("x"), 11); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("oversize upload should fail, got err=%v", err)
	}
	if _, err := svc.UploadImage(ctx, 7, "notes.txt", "text/plain", strings.NewReader("x"), 1); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("non-image upload should fail, got err=%v", err)
	}
	if _, err := svc.UploadImage(ctx, 0, "a.png", "image/png", strings.NewReader("x"), 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing account should fail, got err=%v", err)
	}
}
