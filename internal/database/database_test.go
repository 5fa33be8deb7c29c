package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/job-board-service/internal/config"
)

func TestDBTX_Interface(t *testing.T) {
	t.Run("pgxmock pool satisfies DBTX", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		var _ DBTX = mock
	})

	t.Run("pgxpool satisfies DBTX", func(t *testing.T) {
		var _ DBTX = (*pgxpool.Pool)(nil)
	})
}

func TestPoolConfig(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:              "localhost",
		Port:              5432,
		User:              "jobboard",
		Password:          "p@ss word",
		Name:              "job_board",
		SSLMode:           config.SSLModeDisable,
		MaxConns:          12,
		MinConns:          3,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   10 * time.Minute,
		HealthCheckPeriod: 30 * time.Second,
		ConnectTimeout:    5 * time.Second,
	}

	poolCfg, err := poolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "localhost", poolCfg.ConnConfig.Host)
	assert.Equal(t, uint16(5432), poolCfg.ConnConfig.Port)
	assert.Equal(t, "jobboard", poolCfg.ConnConfig.User)
	assert.Equal(t, "p@ss word", poolCfg.ConnConfig.Password)
	assert.Equal(t, "job_board", poolCfg.ConnConfig.Database)
	assert.Equal(t, int32(12), poolCfg.MaxConns)
	assert.Equal(t, int32(3), poolCfg.MinConns)
	assert.Equal(t, time.Hour, poolCfg.MaxConnLifetime)
	assert.Equal(t, 10*time.Minute, poolCfg.MaxConnIdleTime)
	assert.Equal(t, 30*time.Second, poolCfg.HealthCheckPeriod)
	assert.Equal(t, 5*time.Second, poolCfg.ConnConfig.ConnectTimeout)
}

func TestHealthStatus_Healthy(t *testing.T) {
	assert.True(t, HealthStatus{Status: StatusHealthy}.Healthy())
	assert.False(t, HealthStatus{Status: StatusUnhealthy}.Healthy())
	assert.False(t, HealthStatus{}.Healthy())
}

func TestHealthStatus_JSON(t *testing.T) {
	t.Run("omits empty error", func(t *testing.T) {
		data, err := json.Marshal(HealthStatus{Status: StatusHealthy, MaxConns: 20})
		require.NoError(t, err)
		assert.NotContains(t, string(data), `"error"`)
		assert.Contains(t, string(data), `"max_conns":20`)
	})

	t.Run("includes error when unhealthy", func(t *testing.T) {
		data, err := json.Marshal(HealthStatus{Status: StatusUnhealthy, Error: "connection refused"})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"error":"connection refused"`)
	})
}

func TestNew_ConnectionError(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping network test in short mode")
	}

	// 192.0.2.1 is TEST-NET-1 (RFC 5737), guaranteed unroutable.
	cfg := &config.DatabaseConfig{
		Host:              "192.0.2.1",
		Port:              5432,
		Name:              "testdb",
		User:              "user",
		Password:          "pass",
		SSLMode:           config.SSLModeDisable,
		MaxConns:          5,
		MinConns:          0,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: 30 * time.Second,
		ConnectTimeout:    time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := New(ctx, cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, db)
}

func TestDB_CloseNilPool(t *testing.T) {
	db := &DB{logger: zerolog.Nop()}
	assert.NotPanics(t, func() {
		db.Close()
	})
}
