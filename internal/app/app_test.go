package app

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpRouter "github.com/jhoicas/pos-sync/internal/interfaces/http"
	"github.com/jhoicas/pos-sync/pkg/config"
	"github.com/jhoicas/pos-sync/pkg/jwt"
	"github.com/jhoicas/pos-sync/pkg/logger"
)

func memoryConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Env: "test", Name: "pos-sync"},
		Store:  config.StoreConfig{Driver: config.StoreDriverMemory},
		Notify: config.NotifyConfig{ChannelPrefix: "business_", Buffer: 8},
		Sync:   config.SyncConfig{MaxBatchSize: 5},
	}
}

func TestBuild_AlmacenEnMemoria(t *testing.T) {
	log := logger.New(logger.Config{Env: "test", Level: "error", Out: io.Discard})
	c, err := Build(context.Background(), memoryConfig(), log, Options{Notify: true})
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Pool)
	assert.Equal(t, 5, c.Orchestrator.MaxBatchSize())

	app := httpRouter.NewApp("pos-sync", c.RouterDeps(jwt.NewVerifier("secreto", "")))
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestClose_EsIdempotente(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Out: io.Discard})
	c, err := Build(context.Background(), memoryConfig(), log, Options{Notify: true})
	require.NoError(t, err)
	c.Close()
	c.Close()
}
