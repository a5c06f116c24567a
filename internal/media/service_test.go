package media

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielcastano/mercato-backend/pkg/config"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
)

type fakeBlobStore struct {
	objects map[string]string
	deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string]string{}}
}

func (s *fakeBlobStore) Store(_ context.Context, objectName, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[objectName] = string(data)
	return "https://storage.example.com/bucket/" + objectName, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, objectName string) error {
	delete(s.objects, objectName)
	s.deleted = append(s.deleted, objectName)
	return nil
}

func (s *fakeBlobStore) Ping(context.Context) error { return nil }

func TestUpload(t *testing.T) {
	store := newFakeBlobStore()
	svc, err := NewService(store, config.MediaConfig{MaxUploadMB: 10})
	require.NoError(t, err)

	result, err := svc.Upload(context.Background(), UploadInput{
		Kind:        KindShop,
		Filename:    "storefront.png",
		ContentType: "image/png",
		Size:        512,
		Body:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.ObjectName, "shops/"))
	assert.True(t, strings.HasSuffix(result.ObjectName, ".png"))
	assert.Contains(t, result.URL, result.ObjectName)
	assert.Equal(t, "png-bytes", store.objects[result.ObjectName])
}

func TestUploadRejectsBadInput(t *testing.T) {
	svc, err := NewService(newFakeBlobStore(), config.MediaConfig{MaxUploadMB: 1})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Upload(ctx, UploadInput{ContentType: "application/pdf", Size: 10, Body: strings.NewReader("x")})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	_, err = svc.Upload(ctx, UploadInput{ContentType: "image/jpeg", Size: 2 * 1024 * 1024, Body: strings.NewReader("x")})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	_, err = svc.Upload(ctx, UploadInput{ContentType: "image/jpeg", Size: 10})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestRemove(t *testing.T) {
	store := newFakeBlobStore()
	svc, err := NewService(store, config.MediaConfig{})
	require.NoError(t, err)
	ctx := context.Background()

	uploaded, err := svc.Upload(ctx, UploadInput{
		ContentType: "image/webp",
		Size:        3,
		Body:        strings.NewReader("abc"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, uploaded.ObjectName))
	assert.Equal(t, []string{uploaded.ObjectName}, store.deleted)

	err = svc.Remove(ctx, "  ")
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}
