package repository

import (
	"context"

	"ampnm-backend/internal/model"

	"gorm.io/gorm"
)

type MapRepository interface {
	GetByUser(ctx context.Context, userID uint) ([]model.NetworkMap, error)
	FindByID(ctx context.Context, userID, id uint) (*model.NetworkMap, error)
	Create(ctx context.Context, m *model.NetworkMap) error
	Rename(ctx context.Context, userID, id uint, name string) (*model.NetworkMap, error)
	Delete(ctx context.Context, userID, id uint) error
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type mapRepository struct {
	db *gorm.DB
}

func NewMapRepository(db *gorm.DB) MapRepository {
	return &mapRepository{db}
}

func (r *mapRepository) GetByUser(ctx context.Context, userID uint) ([]model.NetworkMap, error) {
	maps := []model.NetworkMap{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name asc").Order("id asc").Find(&maps).Error
	return maps, err
}

func (r *mapRepository) FindByID(ctx context.Context, userID, id uint) (*model.NetworkMap, error) {
	var m model.NetworkMap
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *mapRepository) Create(ctx context.Context, m *model.NetworkMap) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *mapRepository) Rename(ctx context.Context, userID, id uint, name string) (*model.NetworkMap, error) {
	m, err := r.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(m).Update("name", name).Error; err != nil {
		return nil, err
	}
	m.Name = name
	return m, nil
}

// Delete removes the map and detaches its devices; the devices themselves stay.
func (r *mapRepository) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&model.NetworkMap{}).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&model.NetworkDevice{}).Where("map_id = ?", id).Update("map_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.NetworkMap{}, id).Error
	})
}

func (r *mapRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.NetworkMap{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
