package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mets-backend/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.SourceDemo, cfg.OrderSource)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, "openRouter", cfg.AIActiveService)
	assert.Equal(t, "gemini-1.5-pro", cfg.GeminiModel)
	assert.Equal(t, "google/gemini-flash-1.5", cfg.OpenRouterInstructModel)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, cfg.BaseURL, cfg.OpenRouterSiteURL)
	assert.False(t, cfg.StorageEnabled())
}

func TestLoad_SiteURLFollowsBaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("BASE_URL", "https://mets.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://mets.example.com", cfg.OpenRouterSiteURL)

	t.Setenv("OPENROUTER_SITE_URL", "https://app.example.com")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com", cfg.OpenRouterSiteURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("AI_ACTIVE_SERVICE", "gemini")
	t.Setenv("API_TIMEOUT", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, "gemini", cfg.AIActiveService)
	assert.Equal(t, "5s", cfg.APITimeout.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			cfg:     config.Config{OrderSource: config.SourceDemo, PageSize: 10},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "postgres without database url",
			cfg:     config.Config{JWTSecret: "s", OrderSource: config.SourcePostgres, PageSize: 10},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "supabase without key",
			cfg:     config.Config{JWTSecret: "s", OrderSource: config.SourceSupabase, SupabaseURL: "http://x", PageSize: 10},
			wantErr: "SUPABASE_KEY is required",
		},
		{
			name:    "api without base url",
			cfg:     config.Config{JWTSecret: "s", OrderSource: config.SourceAPI, PageSize: 10},
			wantErr: "API_BASE_URL is required",
		},
		{
			name: "api in mock mode",
			cfg:  config.Config{JWTSecret: "s", OrderSource: config.SourceAPI, APIMockMode: true, PageSize: 10},
		},
		{
			name:    "unknown source",
			cfg:     config.Config{JWTSecret: "s", OrderSource: "firebase", PageSize: 10},
			wantErr: "unknown ORDER_SOURCE",
		},
		{
			name:    "zero page size",
			cfg:     config.Config{JWTSecret: "s", OrderSource: config.SourceDemo},
			wantErr: "PAGE_SIZE must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
