package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-hris-workflow/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

const maxSignatureBytes = 2 << 20

var (
	ErrInvalidSignature = apperror.New(
		apperror.CodeValidation,
		"Signature must be a base64 encoded PNG or JPEG image",
		http.StatusUnprocessableEntity,
	)

	ErrSignatureTooLarge = apperror.New(
		apperror.CodeValidation,
		"Signature image is too large",
		http.StatusUnprocessableEntity,
	)
)

// ObjectPutter is the subset of *minio.Client the store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

//go:generate mockgen -source=signature_store.go -destination=mock/signature_store_mock.go -package=mock
type SignatureStore interface {
	// Save stores a signature image and returns its reference path.
	Save(ctx context.Context, kind, userID, encoded string) (string, error)
}

type minioSignatureStore struct {
	client ObjectPutter
	bucket string
	logger *zap.Logger
}

func NewSignatureStore(client ObjectPutter, bucket string, logger ...*zap.Logger) SignatureStore {
	l := zap.L().Named("storage.signature")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("storage.signature")
	}
	return &minioSignatureStore{client: client, bucket: bucket, logger: l}
}

func (s *minioSignatureStore) Save(ctx context.Context, kind, userID, encoded string) (string, error) {
	data, contentType, err := DecodeImage(encoded)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("signatures/%s/signature_%s_%s_%s.%s",
		kind, kind, userID, uuid.NewString(), extension(contentType))

	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		s.logger.Error("signature upload failed",
			zap.String("object", objectName),
			zap.Error(err),
		)
		return "", apperror.Wrap(err, apperror.CodeServiceUnavailable, apperror.ErrUnavailable.Message, http.StatusServiceUnavailable)
	}

	s.logger.Debug("signature stored", zap.String("object", objectName), zap.Int("bytes", len(data)))
	return objectName, nil
}

// DecodeImage accepts a data URL or raw base64 and returns the image bytes and content type.
func DecodeImage(encoded string) ([]byte, string, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i > 0 {
		encoded = encoded[i+1:]
	}
	if encoded == "" {
		return nil, "", ErrInvalidSignature
	}
	if base64.StdEncoding.DecodedLen(len(encoded)) > maxSignatureBytes {
		return nil, "", ErrSignatureTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", ErrInvalidSignature
	}

	contentType := http.DetectContentType(data)
	switch contentType {
	case "image/png", "image/jpeg":
		return data, contentType, nil
	default:
		return nil, "", ErrInvalidSignature
	}
}

func extension(contentType string) string {
	if contentType == "image/jpeg" {
		return "jpg"
	}
	return "png"
}
