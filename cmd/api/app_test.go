package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/library/pkg/lock"
	"github.com/xiebiao/library/pkg/mq"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("LIBRARY_STORAGE_DRIVER", config.DriverMemory)
	t.Setenv("LIBRARY_SERVER_MODE", "test")
	t.Setenv("LIBRARY_GRPC_PORT", "0")
	t.Setenv("LIBRARY_LOG_OUTPUT", "stderr")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestInitializeApp_Memory(t *testing.T) {
	cfg := memoryConfig(t)

	app, cleanup, err := InitializeApp(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.False(t, app.tracing.Enabled)
	assert.Equal(t, ":8080", app.http.Addr)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	app.http.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), config.DriverMemory)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	t.Setenv("LIBRARY_SERVER_PORT", "18089")
	cfg := memoryConfig(t)

	app, cleanup, err := InitializeApp(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:18089/ping")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("应用未在ctx取消后退出")
	}
}

func TestInitializeApp_UnknownDriver(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage.Driver = "cassandra"

	_, _, err := InitializeApp(context.Background(), cfg)
	assert.Error(t, err)
}

func TestProviders_LocalDefaults(t *testing.T) {
	cfg := memoryConfig(t)
	store := persistence.NewMemoryStore(memory.NewStore())

	_, ok := provideLocker(cfg, nil, zap.NewNop()).(*lock.KeyedMutex)
	assert.True(t, ok)
	assert.Equal(t, store.Sequence, provideSequence(cfg, store, nil))

	pub, cleanup, err := providePublisher(cfg, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, mq.NopPublisher{}, pub)
}
