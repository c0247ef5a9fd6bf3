package repository

import (
	"context"

	"ampnm-backend/internal/model"

	"gorm.io/gorm"
)

// DashboardStats mirrors the counters the dashboard shows above the device list.
type DashboardStats struct {
	TotalDevices   int64 `json:"total_devices"`
	OnlineDevices  int64 `json:"online_devices"`
	OfflineDevices int64 `json:"offline_devices"`
	UnknownDevices int64 `json:"unknown_devices"`
	TotalMaps      int64 `json:"total_maps"`
}

type DashboardRepository interface {
	GetDashboardStats(ctx context.Context, userID uint, mapID *uint) (*DashboardStats, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db}
}

func (r *dashboardRepository) GetDashboardStats(ctx context.Context, userID uint, mapID *uint) (*DashboardStats, error) {
	db := r.db.WithContext(ctx)
	stats := &DashboardStats{}

	// 1. Devices per status
	var rows []struct {
		Status string
		Count  int64
	}
	query := db.Model(&model.NetworkDevice{}).Where("user_id = ?", userID)
	if mapID != nil {
		query = query.Where("map_id = ?", *mapID)
	}
	if err := query.Group("status").Select("status, count(*) as count").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.TotalDevices += row.Count
		switch model.DeviceStatus(row.Status) {
		case model.DeviceOnline:
			stats.OnlineDevices = row.Count
		case model.DeviceOffline:
			stats.OfflineDevices = row.Count
		default:
			stats.UnknownDevices += row.Count
		}
	}

	// 2. Maps of the user
	if err := db.Model(&model.NetworkMap{}).Where("user_id = ?", userID).Count(&stats.TotalMaps).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
