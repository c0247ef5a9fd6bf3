package repository

import (
	"context"

	"ampnm-backend/internal/model"

	"gorm.io/gorm"
)

// DeviceChanges lists the fields of a partial device update; nil means unchanged.
type DeviceChanges struct {
	Name        *string
	IPAddress   *string
	Type        *string
	Description *string
	MapID       *uint
	PositionX   *float64
	PositionY   *float64
}

func (c DeviceChanges) columns() map[string]any {
	cols := map[string]any{}
	if c.Name != nil {
		cols["name"] = *c.Name
	}
	if c.IPAddress != nil {
		cols["ip_address"] = *c.IPAddress
	}
	if c.Type != nil {
		cols["type"] = *c.Type
	}
	if c.Description != nil {
		cols["description"] = *c.Description
	}
	if c.MapID != nil {
		cols["map_id"] = *c.MapID
	}
	if c.PositionX != nil {
		cols["position_x"] = *c.PositionX
	}
	if c.PositionY != nil {
		cols["position_y"] = *c.PositionY
	}
	return cols
}

type DeviceRepository interface {
	GetByUser(ctx context.Context, userID uint, mapID *uint) ([]model.NetworkDevice, error)
	FindByID(ctx context.Context, userID, id uint) (*model.NetworkDevice, error)
	Create(ctx context.Context, device *model.NetworkDevice) error
	Update(ctx context.Context, userID, id uint, changes DeviceChanges) error
	Delete(ctx context.Context, userID, id uint) error
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type deviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db}
}

// withMapName selects devices together with the name of the map they sit on.
func (r *deviceRepository) withMapName(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.NetworkDevice{}).
		Select("network_devices.*, network_maps.name AS map_name").
		Joins("LEFT JOIN network_maps ON network_maps.id = network_devices.map_id")
}

func (r *deviceRepository) GetByUser(ctx context.Context, userID uint, mapID *uint) ([]model.NetworkDevice, error) {
	devices := []model.NetworkDevice{}
	query := r.withMapName(ctx).Where("network_devices.user_id = ?", userID)
	if mapID != nil {
		query = query.Where("network_devices.map_id = ?", *mapID)
	}
	err := query.Order("network_devices.name asc").Order("network_devices.id asc").Find(&devices).Error
	return devices, err
}

func (r *deviceRepository) FindByID(ctx context.Context, userID, id uint) (*model.NetworkDevice, error) {
	var device model.NetworkDevice
	err := r.withMapName(ctx).
		Where("network_devices.id = ? AND network_devices.user_id = ?", id, userID).
		First(&device).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &device, nil
}

func (r *deviceRepository) Create(ctx context.Context, device *model.NetworkDevice) error {
	if device.Status == "" {
		device.Status = model.DeviceUnknown
	}
	return r.db.WithContext(ctx).Create(device).Error
}

// Update applies changes to one device owned by userID. A target map must
// belong to the same user.
func (r *deviceRepository) Update(ctx context.Context, userID, id uint, changes DeviceChanges) error {
	db := r.db.WithContext(ctx)
	if err := db.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&model.NetworkDevice{}).Error; err != nil {
		return notFound(err)
	}
	if changes.MapID != nil {
		err := db.Select("id").Where("id = ? AND user_id = ?", *changes.MapID, userID).First(&model.NetworkMap{}).Error
		if err != nil {
			return notFound(err)
		}
	}
	cols := changes.columns()
	if len(cols) == 0 {
		return nil
	}
	return db.Model(&model.NetworkDevice{}).Where("id = ? AND user_id = ?", id, userID).Updates(cols).Error
}

func (r *deviceRepository) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&model.NetworkDevice{}).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("device_id = ?", id).Delete(&model.PingHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.NetworkDevice{}, id).Error
	})
}

func (r *deviceRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.NetworkDevice{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
