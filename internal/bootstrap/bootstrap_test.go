package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketpulse/internal/common/config"
	apperrors "marketpulse/internal/common/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WithoutDatabase(t *testing.T) {
	s, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.Postgres)
	assert.Nil(t, s.Redis)
	assert.Empty(t, s.Ready())

	_, err = s.Orchestrator.Reset(context.Background(), "u-1")
	assert.Equal(t, apperrors.ErrCodeConfigMissing, apperrors.Classify(err))
	assert.Equal(t, "DATABASE_URL is not configured", err.Error())
}

func TestNew_MissingServiceRoleKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Postgres.URL = "postgres://app@127.0.0.1:1/marketpulse?sslmode=disable"

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.Postgres)
	_, err = s.Orchestrator.Reset(context.Background(), "u-1")
	assert.Equal(t, apperrors.ErrCodeConfigMissing, apperrors.Classify(err))
	assert.Equal(t, "DATABASE_SERVICE_ROLE_KEY is not configured", err.Error())

	_, err = s.Generator.Generate(context.Background(), "u-1", "")
	assert.Equal(t, "DATABASE_SERVICE_ROLE_KEY is not configured", err.Error())
}

func TestNew_ElasticsearchReadiness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.Database.Elasticsearch.Addresses = []string{srv.URL}
	cfg.Reporting.Elasticsearch.Enabled = true
	cfg.Reporting.Elasticsearch.Index = "marketpulse-errors"

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	require.NotNil(t, s.Elasticsearch)
	require.Contains(t, s.Ready(), "elasticsearch")
	assert.NoError(t, s.Ready()["elasticsearch"].Ping(context.Background()))
}

func TestNew_OpensConfiguredDependencies(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.Database.Postgres = config.PostgresConfig{
		URL:            "postgres://app@127.0.0.1:1/marketpulse?sslmode=disable",
		ServiceRoleKey: "secret",
	}
	cfg.Database.Redis.Address = mr.Addr()
	cfg.Notifications = config.NotificationConfig{Enabled: true, Channel: "marketpulse:notifications"}

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()

	require.NotNil(t, s.Postgres)
	require.NotNil(t, s.Redis)
	assert.Len(t, s.Ready(), 2)
	assert.NoError(t, s.Ready()["redis"].Ping(context.Background()))
}

func TestNew_RejectsUnknownCollection(t *testing.T) {
	cfg := &config.Config{}
	cfg.Reset.Collections = []string{"users"}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
