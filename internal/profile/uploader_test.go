package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeStorage keeps uploaded objects in a map keyed the same way the real
// bucket would be, so key reuse is observable.
type fakeStorage struct {
	objects      map[string][]byte
	contentTypes map[string]string
	uploadErr    error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects:      map[string][]byte{},
		contentTypes: map[string]string{},
	}
}

func (s *fakeStorage) Upload(_ context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: declared %d, read %d", size, len(data))
	}
	s.objects[key] = data
	s.contentTypes[key] = contentType
	return nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return "http://cdn.local/avatars/" + key
}

func TestUploadUsesDeterministicKeyPerUser(t *testing.T) {
	store := newFakeStorage()
	up := NewAvatarUploader(store)
	uid := uuid.NewString()

	_, err := up.Upload(context.Background(), uid, []byte("first"))
	require.NoError(t, err)
	_, err = up.Upload(context.Background(), uid, []byte("second"))
	require.NoError(t, err)

	// repeated uploads overwrite a single object instead of accumulating
	require.Len(t, store.objects, 1)
	key := "avatar-" + uid + ".jpeg"
	require.Equal(t, []byte("second"), store.objects[key])
	require.Equal(t, "image/jpeg", store.contentTypes[key])
}

func TestUploadCacheBustsThePublicURL(t *testing.T) {
	store := newFakeStorage()
	up := NewAvatarUploader(store)
	uid := uuid.NewString()

	first := time.UnixMilli(1700000000000)
	up.now = func() time.Time { return first }
	url1, err := up.Upload(context.Background(), uid, []byte("img"))
	require.NoError(t, err)
	require.Equal(t,
		fmt.Sprintf("http://cdn.local/avatars/avatar-%s.jpeg?t=%d", uid, first.UnixMilli()),
		url1,
	)

	up.now = func() time.Time { return first.Add(time.Second) }
	url2, err := up.Upload(context.Background(), uid, []byte("img"))
	require.NoError(t, err)

	// same stable object path, different cache-busting parameter
	require.NotEqual(t, url1, url2)
	require.Len(t, store.objects, 1)
}

func TestUploadSurfacesStorageRejection(t *testing.T) {
	store := newFakeStorage()
	store.uploadErr = errors.New("entity too large")
	up := NewAvatarUploader(store)

	_, err := up.Upload(context.Background(), uuid.NewString(), []byte("img"))
	require.ErrorIs(t, err, ErrStorageRejected)
	require.Empty(t, store.objects)
}
