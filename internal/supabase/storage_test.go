package supabase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mets-backend/internal/export"
	"mets-backend/internal/supabase"
)

func TestExportPath(t *testing.T) {
	at := time.Date(2024, 4, 15, 9, 30, 5, 0, time.FixedZone("TRT", 3*3600))
	assert.Equal(t, "exports/user-1/20240415T063005Z.xlsx", supabase.ExportPath("user-1", at))
}

func TestGetPublicURL_TrimsTrailingSlash(t *testing.T) {
	s := supabase.NewStorageClient("https://abc.supabase.co/", "key", "order-exports")
	assert.Equal(t,
		"https://abc.supabase.co/storage/v1/object/public/order-exports/exports/u/x.xlsx",
		s.GetPublicURL("exports/u/x.xlsx"))
}

func TestListExports(t *testing.T) {
	var gotPath string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`[
			{"name": "20241025T090000Z.xlsx", "id": "f-2"},
			{"name": "20241024T090000Z.xlsx", "id": "f-1"},
			{"name": "old", "id": null}
		]`))
	}))
	defer srv.Close()

	s := supabase.NewStorageClient(srv.URL, "key", "order-exports")
	paths, err := s.ListExports(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "POST /storage/v1/object/list/order-exports", gotPath)
	assert.Equal(t, "exports/u1/", body["prefix"])
	assert.Equal(t, []string{
		"exports/u1/20241025T090000Z.xlsx",
		"exports/u1/20241024T090000Z.xlsx",
	}, paths)
}

func TestDeleteExport(t *testing.T) {
	var gotPath string
	var body struct {
		Prefixes []string `json:"prefixes"`
	}
	removed := `[{"name": "exports/u1/a.xlsx"}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(removed))
	}))
	defer srv.Close()

	s := supabase.NewStorageClient(srv.URL, "key", "order-exports")
	require.NoError(t, s.DeleteExport(context.Background(), "exports/u1/a.xlsx"))
	assert.Equal(t, "DELETE /storage/v1/object/order-exports", gotPath)
	assert.Equal(t, []string{"exports/u1/a.xlsx"}, body.Prefixes)

	removed = `[]`
	err := s.DeleteExport(context.Background(), "exports/u1/a.xlsx")
	assert.ErrorIs(t, err, export.ErrNotFound)
}
