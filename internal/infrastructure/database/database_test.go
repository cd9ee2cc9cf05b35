package database

import (
	"testing"

	"github.com/sangkips/bizledger-api/internal/config"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	log := zap.NewNop()
	db, err := Open(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:", LogLevel: "silent"}, log)
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db, log))
	require.NoError(t, SeedDefaultData(db, log))
	// seeding twice must not duplicate
	require.NoError(t, SeedDefaultData(db, log))

	var count int64
	require.NoError(t, db.Model(&entity.Category{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Info, gormLogLevel("INFO"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}
