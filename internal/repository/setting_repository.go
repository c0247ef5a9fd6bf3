package repository

import (
	"context"
	"errors"

	"ampnm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	// Get returns "" when the key has never been set.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	EnsureInstallationID(ctx context.Context) (string, error)
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	var setting model.AppSetting
	err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.SettingValue, nil
}

func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	setting := model.AppSetting{SettingKey: key, SettingValue: value}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
	}).Create(&setting).Error
}

// EnsureInstallationID returns the stored installation id, generating one on
// first use.
func (r *settingRepository) EnsureInstallationID(ctx context.Context) (string, error) {
	id, err := r.Get(ctx, model.SettingInstallationID)
	if err != nil || id != "" {
		return id, err
	}
	id = "ampnm_" + uuid.NewString()
	if err := r.Set(ctx, model.SettingInstallationID, id); err != nil {
		return "", err
	}
	return id, nil
}
