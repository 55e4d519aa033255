package profile

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/kenal/service/internal/storage"
)

const avatarContentType = "image/jpeg"

// Uploader stores a user's avatar and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, userID string, image []byte) (string, error)
}

// AvatarUploader uploads avatars to object storage under a key deterministic
// in the user ID, so repeated uploads overwrite the previous object instead
// of accumulating orphans.
type AvatarUploader struct {
	store storage.Storage
	now   func() time.Time
}

// NewAvatarUploader creates an AvatarUploader backed by the given store.
func NewAvatarUploader(store storage.Storage) *AvatarUploader {
	return &AvatarUploader{store: store, now: time.Now}
}

// avatarKey derives the stable storage key for a user's avatar.
func avatarKey(userID string) string {
	return fmt.Sprintf("avatar-%s.jpeg", userID)
}

// Upload writes the image to storage and returns its public URL with a
// cache-busting timestamp parameter. The object path is stable across
// uploads, so client caches (keyed on the URL string) are invalidated by the
// query parameter changing per upload. Image content is not inspected: the
// store enforces its own limits and rejects what it cannot accept.
func (u *AvatarUploader) Upload(ctx context.Context, userID string, image []byte) (string, error) {
	key := avatarKey(userID)
	err := u.store.Upload(ctx, key, bytes.NewReader(image), int64(len(image)), avatarContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageRejected, err)
	}
	return fmt.Sprintf("%s?t=%d", u.store.PublicURL(key), u.now().UnixMilli()), nil
}
