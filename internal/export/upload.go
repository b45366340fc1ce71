package export

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("export not found")

// Store keeps finished workbooks per user.
type Store interface {
	// UploadExport stores a workbook and returns its path and public URL.
	UploadExport(ctx context.Context, userID string, at time.Time, data []byte) (path, publicURL string, err error)
	// ListExports returns the stored paths of a user's workbooks.
	ListExports(ctx context.Context, userID string) ([]string, error)
	DeleteExport(ctx context.Context, path string) error
}
