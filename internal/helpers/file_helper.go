package helpers

import (
	"errors"
	"fmt"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farellandr/eventpass/internal/apperrors"
)

type UploadConfig struct {
	MaxSizeBytes     int64
	AllowedMimeTypes []string
	UploadBasePath   string
}

var DefaultImageUploadConfig = UploadConfig{
	MaxSizeBytes: 5 * 1024 * 1024, // 5MB
	AllowedMimeTypes: []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
	},
}

// In returns a copy of the config that saves into dir.
func (config UploadConfig) In(dir string) UploadConfig {
	config.UploadBasePath = dir
	return config
}

// UploadFile sniffs the file content, then saves it under a fresh uuid name.
// Rejected files fail with apperrors.ErrValidation.
func UploadFile(c *gin.Context, fileHeader *multipart.FileHeader, config UploadConfig) (string, error) {
	if fileHeader.Size > config.MaxSizeBytes {
		return "", fmt.Errorf("%w: file size exceeds maximum limit of %d MB", apperrors.ErrValidation, config.MaxSizeBytes/(1024*1024))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open upload: %w", apperrors.ErrStorage, err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("%w: read upload: %w", apperrors.ErrStorage, err)
	}
	if !mimetype.EqualsAny(mtype.String(), config.AllowedMimeTypes...) {
		return "", fmt.Errorf("%w: invalid file type %s. Allowed types: %v", apperrors.ErrValidation, mtype.String(), config.AllowedMimeTypes)
	}

	if err := os.MkdirAll(config.UploadBasePath, 0o755); err != nil {
		return "", fmt.Errorf("%w: create upload directory: %w", apperrors.ErrStorage, err)
	}

	filename := uuid.New().String() + mtype.Extension()
	fullFilepath := filepath.Join(config.UploadBasePath, filename)

	if err := c.SaveUploadedFile(fileHeader, fullFilepath); err != nil {
		return "", fmt.Errorf("%w: save upload: %w", apperrors.ErrStorage, err)
	}

	return fullFilepath, nil
}

func DeleteFile(filePath string) error {
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
