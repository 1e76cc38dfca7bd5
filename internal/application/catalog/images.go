package catalog

import (
	"context"
	"time"

	"github.com/velux/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ImageURLResolver turns a stored object key into a URL a browser can load.
// An empty key resolves to an empty URL.
type ImageURLResolver interface {
	ImageURL(ctx context.Context, key string) string
}

// ObjectStorage is the subset of object storage the catalog needs.
// It is implemented by the infrastructure layer (S3, Spaces, MinIO).
type ObjectStorage interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error
}

func resolveImage(ctx context.Context, images ImageURLResolver, key string) string {
	if images == nil || key == "" {
		return ""
	}
	return images.ImageURL(ctx, key)
}

// deleteObjects removes objects that are no longer referenced. It runs after
// the owning change has committed; failures are logged and never returned.
func deleteObjects(ctx context.Context, storage ObjectStorage, keys []string) {
	if storage == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := storage.DeleteObject(ctx, key); err != nil {
			logger.L(ctx).Warn("Failed to delete orphaned image",
				zap.String("storage_key", key),
				zap.Error(err))
		}
	}
}
