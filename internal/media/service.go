package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/danielcastano/mercato-backend/pkg/config"
	pkgerrors "github.com/danielcastano/mercato-backend/pkg/errors"
	"github.com/danielcastano/mercato-backend/pkg/storage"
)

// Kind groups uploads into blob store folders.
type Kind string

const (
	KindProduct  Kind = "products"
	KindShop     Kind = "shops"
	KindCategory Kind = "categories"
)

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadInput describes one incoming image.
type UploadInput struct {
	Kind        Kind
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult carries the stored object's name and public URL.
type UploadResult struct {
	ObjectName string `json:"object_name"`
	URL        string `json:"url"`
}

// Service stores and removes marketplace images. Blob operations run outside
// any database transaction.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	Remove(ctx context.Context, objectName string) error
}

type service struct {
	store storage.BlobStore
	cfg   config.MediaConfig
}

// NewService builds the media service over a blob store.
func NewService(store storage.BlobStore, cfg config.MediaConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	return &service{store: store, cfg: cfg}, nil
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file body is required")
	}
	ext, ok := allowedContentTypes[strings.ToLower(input.ContentType)]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only jpeg, png and webp images are accepted")
	}
	maxBytes := int64(s.cfg.MaxUploadMB) * 1024 * 1024
	if maxBytes > 0 && input.Size > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %d MB upload limit", s.cfg.MaxUploadMB))
	}
	kind := input.Kind
	if kind == "" {
		kind = KindProduct
	}

	objectName := path.Join(string(kind), uuid.NewString()+ext)
	body := input.Body
	if maxBytes > 0 {
		body = io.LimitReader(body, maxBytes+1)
	}
	url, err := s.store.Store(ctx, objectName, input.ContentType, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}
	return &UploadResult{ObjectName: objectName, URL: url}, nil
}

func (s *service) Remove(ctx context.Context, objectName string) error {
	if strings.TrimSpace(objectName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "object name is required")
	}
	if err := s.store.Delete(ctx, objectName); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	return nil
}
