package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolioapi/internal/model"
	"portfolioapi/internal/storage"
)

var (
	ErrReaderNil        = errors.New("reader is nil")
	ErrUnsupportedImage = errors.New("unsupported image content type")
	ErrInvalidImageName = errors.New("invalid image name")
)

const imagePrefix = "images"

// ImageService manages images referenced by the image field of experiences and projects.
type ImageService interface {
	// Upload stores the content under a generated name (UUID + original extension).
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Image, error)

	// Open streams a stored image by name.
	Open(ctx context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error)

	// PresignURL returns a time-limited direct download URL for the image.
	PresignURL(ctx context.Context, name string) (string, error)

	// Delete removes an image by name.
	Delete(ctx context.Context, name string) error
}

type imageService struct {
	store     storage.Storage
	urlPrefix string
	expiry    time.Duration
}

// NewImageService constructs an ImageService. urlPrefix is the API path images are served under,
// e.g. "/api/images"; it is used to build the URL clients store in records.
func NewImageService(store storage.Storage, urlPrefix string, presignExpiry time.Duration) ImageService {
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &imageService{store: store, urlPrefix: strings.TrimRight(urlPrefix, "/"), expiry: presignExpiry}
}

func (s *imageService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Image, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, ErrUnsupportedImage
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(originalFilename))
	info, err := s.store.Put(ctx, objectKey(name), r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	return &model.Image{
		Key:         name,
		URL:         s.urlPrefix + "/" + name,
		Size:        info.Size,
		ContentType: info.ContentType,
	}, nil
}

func (s *imageService) Open(ctx context.Context, name string) (io.ReadCloser, storage.ObjectInfo, error) {
	if err := validName(name); err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	return s.store.Get(ctx, objectKey(name))
}

func (s *imageService) PresignURL(ctx context.Context, name string) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, objectKey(name), s.expiry)
}

func (s *imageService) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, objectKey(name)); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return nil
}

// validName rejects anything that would escape the images prefix.
func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return ErrInvalidImageName
	}
	return nil
}

func objectKey(name string) string {
	return path.Join(imagePrefix, name)
}
