package supabase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"
	"mets-backend/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StorageClient stores order exports in a Supabase Storage bucket.
type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// ExportPath returns exports/{user}/{timestamp}.xlsx.
func ExportPath(userID string, at time.Time) string {
	return fmt.Sprintf("exports/%s/%s.xlsx", userID, at.UTC().Format("20060102T150405Z"))
}

// UploadExport stores an xlsx file and returns its storage path and public
// URL.
func (s *StorageClient) UploadExport(_ context.Context, userID string, at time.Time, data []byte) (string, string, error) {
	storagePath := ExportPath(userID, at)

	contentType := xlsxContentType
	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload export: %w", err)
	}

	return storagePath, s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		s.baseURL, s.bucket, storagePath)
}

// ListExports returns the storage paths of a user's exports, newest first.
func (s *StorageClient) ListExports(_ context.Context, userID string) ([]string, error) {
	prefix := fmt.Sprintf("exports/%s/", userID)

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit:         1000,
		SortByOptions: storage.SortBy{Column: "name", Order: "desc"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		// Folders carry no id.
		if f.Id == "" {
			continue
		}
		paths = append(paths, prefix+f.Name)
	}
	return paths, nil
}

// DeleteExport removes a stored export. Removing a path the bucket does not
// hold returns export.ErrNotFound.
func (s *StorageClient) DeleteExport(_ context.Context, storagePath string) error {
	removed, err := s.client.RemoveFile(s.bucket, []string{storagePath})
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	if len(removed) == 0 {
		return fmt.Errorf("%w: %s", export.ErrNotFound, storagePath)
	}
	return nil
}
