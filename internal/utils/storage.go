package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"badgehub/internal/config"
	"badgehub/internal/services"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// Storage errors.
var (
	ErrMissingCredentials = errors.New("cloudinary credentials are not configured")
	ErrCloudinaryInit     = errors.New("failed to initialize cloudinary client")
	ErrUploadFailed       = errors.New("file upload failed")
	ErrDeleteFailed       = errors.New("file deletion failed")
)

// CloudinaryStorage uploads badge images to Cloudinary with retries.
type CloudinaryStorage struct {
	client        *cloudinary.Cloudinary
	logger        *zap.Logger
	maxRetries    int
	uploadTimeout time.Duration
	deleteTimeout time.Duration
}

// NewCloudinaryStorage builds a storage client from configuration.
func NewCloudinaryStorage(cfg *config.CloudinaryConfig, logger *zap.Logger) (*CloudinaryStorage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrMissingCredentials
	}

	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCloudinaryInit, err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &CloudinaryStorage{
		client:        client,
		logger:        logger,
		maxRetries:    maxRetries,
		uploadTimeout: 30 * time.Second,
		deleteTimeout: 10 * time.Second,
	}, nil
}

// ptrBool returns a pointer to a bool.
func ptrBool(b bool) *bool {
	return &b
}

// UploadFile pushes a staged file to Cloudinary and reports where it landed.
func (s *CloudinaryStorage) UploadFile(ctx context.Context, localPath string, params *services.StorageUploadParams) (*services.StorageUploadResult, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	src, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer src.Close()

	uploadParams := uploader.UploadParams{
		Folder:         params.Folder,
		PublicID:       params.FileName,
		UseFilename:    ptrBool(true),
		UniqueFilename: ptrBool(true),
		ResourceType:   "image",
	}

	var result *uploader.UploadResult
	operation := func() error {
		var opErr error
		result, opErr = s.client.Upload.Upload(ctx, src, uploadParams)
		if opErr != nil {
			// The reader has advanced; rewind before the next attempt.
			if _, seekErr := src.Seek(0, 0); seekErr != nil {
				return backoff.Permanent(seekErr)
			}
		}
		return opErr
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = s.uploadTimeout / 2
	err = backoff.RetryNotify(
		operation,
		backoff.WithMaxRetries(b, uint64(s.maxRetries)),
		func(err error, d time.Duration) {
			s.logger.Warn("Upload attempt failed",
				zap.String("file", params.FileName),
				zap.Error(err),
				zap.Duration("backoff", d))
		},
	)
	if err != nil {
		s.logger.Error("All upload attempts failed",
			zap.String("file", params.FileName),
			zap.Int("attempts", s.maxRetries),
			zap.Error(err))
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrUploadFailed, s.maxRetries, err)
	}

	s.logger.Info("File uploaded",
		zap.String("file", params.FileName),
		zap.String("public_id", result.PublicID),
		zap.Int64("size", int64(result.Bytes)),
		zap.Duration("duration", time.Since(start)))

	return &services.StorageUploadResult{
		PublicID: result.PublicID,
		URL:      result.SecureURL,
		Size:     int64(result.Bytes),
	}, nil
}

// DeleteFile removes a stored file by its public ID.
func (s *CloudinaryStorage) DeleteFile(ctx context.Context, publicID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.deleteTimeout)
	defer cancel()

	_, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	s.logger.Info("File deleted", zap.String("public_id", publicID))
	return nil
}
