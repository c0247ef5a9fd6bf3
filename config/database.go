package config

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"ampnm-backend/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AppModels are the tables of the monitoring application database.
var AppModels = []any{
	&model.User{},
	&model.NetworkMap{},
	&model.NetworkDevice{},
	&model.PingHistory{},
	&model.AppSetting{},
	&model.Session{},
}

// PortalModels are the tables of the license portal database.
var PortalModels = []any{
	&model.Customer{},
	&model.Profile{},
	&model.Product{},
	&model.License{},
}

// ConnectDB opens the database described by cfg and migrates the given models.
// The returned handle is safe for concurrent use; database/sql underneath
// replaces dropped connections on the next query.
func ConnectDB(cfg DBConfig, models ...any) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// One writer at a time; also keeps ":memory:" databases on a single connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	// Auto Migration: create tables from the structs in internal/model
	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("migrate %s database: %w", cfg.Driver, err)
	}

	slog.Info("database connected", "driver", cfg.Driver, "name", dbLabel(cfg))
	return db, nil
}

// PingDB checks that the handle can still reach the server.
func PingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func dbLabel(cfg DBConfig) string {
	if cfg.Driver == "sqlite" {
		return cfg.Path
	}
	return cfg.Name
}
