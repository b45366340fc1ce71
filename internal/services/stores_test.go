package services_test

import (
	"mets-backend/internal/apiclient"
	"mets-backend/internal/export"
	"mets-backend/internal/services"
	"mets-backend/internal/supabase"
)

var (
	_ services.OrderStore  = (*supabase.DatabaseClient)(nil)
	_ services.OrderStore  = (*supabase.DocumentSource)(nil)
	_ services.OrderStore  = (*apiclient.Client)(nil)
	_ services.OrderWriter = (*supabase.DatabaseClient)(nil)
	_ services.OrderWriter = (*supabase.DocumentSource)(nil)
	_ services.OrderWriter = (*apiclient.Client)(nil)
	_ export.Store         = (*supabase.StorageClient)(nil)
)
