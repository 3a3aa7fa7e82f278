package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/localnerve/tevor-api/internal/config"
	"github.com/localnerve/tevor-api/internal/services"
	"github.com/localnerve/tevor-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	db := testutil.NewTestDB(t)
	cfg := &config.Config{DBType: "sqlite", DBDatabase: ":memory:"}

	var buf bytes.Buffer
	healthy, err := report(&buf, services.HealthCheck(t.Context(), cfg, db, testutil.Logger()))
	require.NoError(t, err)
	assert.True(t, healthy)

	var out services.HealthCheckResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "healthy", out.Status)

	buf.Reset()
	healthy, err = report(&buf, services.HealthCheckResult{Status: "unhealthy", ErrorMessage: "down"})
	require.NoError(t, err)
	assert.False(t, healthy)
	assert.Contains(t, buf.String(), `"error": "down"`)
}
