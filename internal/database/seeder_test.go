package database

import (
	"context"
	"testing"

	"ampnm-backend/config"
	"ampnm-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
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

func TestSeedApp(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, config.AppModels...)
	admin := AdminSeed{Username: "admin", Email: "admin@example.com", Password: "password"}

	require.NoError(t, SeedApp(ctx, db, admin))

	var user model.User
	require.NoError(t, db.Where("username = ?", "admin").First(&user).Error)
	assert.Equal(t, model.RoleAdmin, user.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password")))

	var setting model.AppSetting
	require.NoError(t, db.First(&setting, "setting_key = ?", model.SettingInstallationID).Error)
	installationID := setting.SettingValue
	assert.NotEmpty(t, installationID)

	// Second run changes nothing unless asked to reset the password
	admin.Password = "changed"
	require.NoError(t, SeedApp(ctx, db, admin))

	var users, maps int64
	db.Model(&model.User{}).Count(&users)
	db.Model(&model.NetworkMap{}).Where("name = ?", DefaultMapName).Count(&maps)
	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 1, maps)

	require.NoError(t, db.First(&user, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password")))
	require.NoError(t, db.First(&setting, "setting_key = ?", model.SettingInstallationID).Error)
	assert.Equal(t, installationID, setting.SettingValue)

	admin.ResetPassword = true
	require.NoError(t, SeedApp(ctx, db, admin))
	require.NoError(t, db.First(&user, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("changed")))
}

func TestSeedPortal(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, config.PortalModels...)

	require.NoError(t, SeedPortal(ctx, db))
	require.NoError(t, SeedPortal(ctx, db))

	var products []model.Product
	require.NoError(t, db.Order("price").Find(&products).Error)
	require.Len(t, products, len(DefaultProducts))

	demo := products[0]
	assert.True(t, demo.IsDemo)
	assert.Equal(t, 5, demo.MaxDevices)
	assert.Equal(t, 7, demo.LicenseDurationDays)
	assert.Equal(t, model.UnlimitedDevices, products[len(products)-1].MaxDevices)
}
