package supabase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mets-backend/internal/config"
	"mets-backend/internal/models"
	"mets-backend/internal/supabase"
)

func TestDocumentSource_Load(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Range", "0-0/1")
		_, _ = w.Write([]byte(`[{
			"id": "o-1",
			"order_no": "#0424-1251",
			"order_date": "2024-04-15",
			"customer_info": {"name": "AYEDAŞ", "documentNo": "123"},
			"cells": [{"productTypeCode": "RM 36 CB", "quantity": 1, "deliveryDate": "2024-11-15"}],
			"status": "delayed",
			"progress": 65,
			"priority": "high"
		}]`))
	}))
	defer srv.Close()

	client, err := supabase.NewClient(&config.Config{SupabaseURL: srv.URL, SupabaseKey: "anon"})
	require.NoError(t, err)

	list, err := supabase.NewDocumentSource(client).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/orders", gotPath)
	assert.Contains(t, gotQuery, "order=order_date.desc")
	require.Len(t, list, 1)
	assert.Equal(t, "AYEDAŞ", list[0].CustomerInfo.Name)
	assert.Equal(t, 65, list[0].Progress)
}

func TestDocumentSource_CanceledContext(t *testing.T) {
	client, err := supabase.NewClient(&config.Config{SupabaseURL: "http://127.0.0.1:1", SupabaseKey: "anon"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = supabase.NewDocumentSource(client).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

const orderDocument = `{
	"id": "o-1",
	"order_no": "#0424-1251",
	"order_date": "2024-04-15",
	"customer_info": {"name": "AYEDAŞ", "documentNo": "123"},
	"cells": [],
	"status": "in_progress",
	"progress": 20,
	"priority": "high"
}`

func TestDocumentSource_StatusAndDelete(t *testing.T) {
	var calls []string
	var patch map[string]any
	found := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		if r.Method == http.MethodPatch {
			_ = json.NewDecoder(r.Body).Decode(&patch)
		}
		w.Header().Set("Content-Type", "application/json")
		if !found {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte("[" + orderDocument + "]"))
	}))
	defer srv.Close()

	client, err := supabase.NewClient(&config.Config{SupabaseURL: srv.URL, SupabaseKey: "service"})
	require.NoError(t, err)
	docs := supabase.NewDocumentSource(client)
	ctx := context.Background()

	o, err := docs.GetOrder(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, o.Status)

	require.NoError(t, docs.UpdateOrderStatus(ctx, "o-1", models.StatusInProgress, 20))
	assert.Equal(t, "in_progress", patch["status"])
	assert.EqualValues(t, 20, patch["progress"])

	require.NoError(t, docs.DeleteOrder(ctx, "o-1"))

	require.Len(t, calls, 3)
	assert.Contains(t, calls[0], "GET /rest/v1/orders?")
	assert.Contains(t, calls[1], "PATCH /rest/v1/orders?")
	assert.Contains(t, calls[2], "DELETE /rest/v1/orders?")
	for _, c := range calls {
		assert.Contains(t, c, "id=eq.o-1")
	}

	found = false
	_, err = docs.GetOrder(ctx, "o-1")
	assert.ErrorIs(t, err, supabase.ErrOrderNotFound)
	assert.ErrorIs(t, docs.UpdateOrderStatus(ctx, "o-1", models.StatusCompleted, 100), supabase.ErrOrderNotFound)
	assert.ErrorIs(t, docs.DeleteOrder(ctx, "o-1"), supabase.ErrOrderNotFound)
}
