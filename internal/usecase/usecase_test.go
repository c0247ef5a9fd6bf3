package usecase

import (
	"testing"

	"ampnm-backend/config"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	db, err := config.ConnectDB(config.DBConfig{Driver: "sqlite", Path: ":memory:"}, models...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
