package storage

import (
	"context"
	"io"
)

// UploadResult identifies a stored file: the key used for deletion and the
// URL handed to clients.
type UploadResult struct {
	Key       string
	PublicURL string
}

// FileStore persists uploaded payment screenshots. Implementations must
// generate collision-resistant keys; Delete failures are reported, not fatal,
// and callers log and proceed.
type FileStore interface {
	Upload(ctx context.Context, body io.Reader, contentType, originalName string) (UploadResult, error)
	Delete(ctx context.Context, key string) error
}
