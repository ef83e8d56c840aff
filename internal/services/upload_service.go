package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"foodgram_backend/internal/imageprocessor"
	"foodgram_backend/internal/logger"
	"foodgram_backend/internal/metrics"
	"foodgram_backend/internal/storage"
	"foodgram_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// UploadService turns base64 image payloads into stored files.
type UploadService interface {
	// SaveImage validates the data URI and stores it under "<folder>/<uuid>.<ext>".
	SaveImage(ctx context.Context, folder, dataURI string) (string, error)
	// DeleteImage removes a stored image; failures are logged, not returned.
	DeleteImage(ctx context.Context, key string)
	// URL returns the public address of a key, or "" for an empty key.
	URL(key string) string
}

type uploadService struct {
	storage   storage.Storage
	processor *imageprocessor.Processor
}

func NewUploadService(storage storage.Storage, processor *imageprocessor.Processor) UploadService {
	return &uploadService{
		storage:   storage,
		processor: processor,
	}
}

func (s *uploadService) SaveImage(ctx context.Context, folder, dataURI string) (string, error) {
	img, err := s.processor.Prepare(dataURI)
	if err != nil {
		return "", handleUploadError(err)
	}

	key := fmt.Sprintf("%s/%s.%s", folder, uuid.NewString(), img.Ext)
	if err := s.storage.Save(ctx, key, bytes.NewReader(img.Data), img.ContentType); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternalServiceError, "storage", "Failed to store image", http.StatusBadGateway)
	}

	metrics.RecordImageStored(s.storage.Backend())
	logger.CtxDebug(ctx, "Image stored", "key", key, "bytes", len(img.Data), "width", img.Width, "height", img.Height)
	return key, nil
}

func (s *uploadService) DeleteImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.CtxWithError(ctx, "Failed to delete stored image", err, "key", key)
	}
}

func (s *uploadService) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.storage.URL(key)
}

func handleUploadError(err error) error {
	if errors.Is(err, imageprocessor.ErrImageTooLarge) {
		return apperrors.ErrImageTooLarge
	}
	if errors.Is(err, imageprocessor.ErrInvalidImage) {
		return apperrors.ErrInvalidImage.WithDetails(err.Error())
	}
	return apperrors.InternalError(err)
}
