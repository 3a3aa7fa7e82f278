package database

import (
	"testing"

	"github.com/localnerve/tevor-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	for _, dbType := range []string{"mysql", "mariadb", "postgres", "postgresql", "sqlite", "sqlite3", "sqlserver", "mssql"} {
		t.Run(dbType, func(t *testing.T) {
			d, err := Dialector(&config.Config{DBType: dbType, DBDatabase: "tevor"})
			require.NoError(t, err)
			assert.NotNil(t, d)
		})
	}

	_, err := Dialector(&config.Config{DBType: "oracle"})
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "tevor.db?a=1", sqliteDSN("tevor.db", "a=1"))
	assert.Equal(t, "file:tevor.db?mode=rwc&a=1", sqliteDSN("file:tevor.db?mode=rwc", "a=1"))
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, LogLevel("silent"))
	assert.Equal(t, logger.Error, LogLevel("ERROR"))
	assert.Equal(t, logger.Info, LogLevel("debug"))
	assert.Equal(t, logger.Warn, LogLevel(""))
}
