package repository

import (
	"context"
	"time"

	"ampnm-backend/internal/model"

	"gorm.io/gorm"
)

type LicenseRepository interface {
	Create(ctx context.Context, license *model.License) error
	FindByKey(ctx context.Context, key string) (*model.License, error)
	RecordVerification(ctx context.Context, id uint, installationID string, devices int, at time.Time) error
}

type licenseRepository struct {
	db *gorm.DB
}

func NewLicenseRepository(db *gorm.DB) LicenseRepository {
	return &licenseRepository{db}
}

func (r *licenseRepository) Create(ctx context.Context, license *model.License) error {
	return r.db.WithContext(ctx).Create(license).Error
}

func (r *licenseRepository) FindByKey(ctx context.Context, key string) (*model.License, error) {
	var license model.License
	if err := r.db.WithContext(ctx).Preload("Product").Where("license_key = ?", key).First(&license).Error; err != nil {
		return nil, notFound(err)
	}
	return &license, nil
}

func (r *licenseRepository) RecordVerification(ctx context.Context, id uint, installationID string, devices int, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.License{}).Where("id = ?", id).Updates(map[string]any{
		"installation_id":  installationID,
		"current_devices":  devices,
		"last_verified_at": at,
	}).Error
}
