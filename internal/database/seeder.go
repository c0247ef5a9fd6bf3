package database

import (
	"context"
	"fmt"
	"log/slog"

	"ampnm-backend/internal/model"
	"ampnm-backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultMapName is the map created for the seeded admin.
const DefaultMapName = "Default Network"

// AdminSeed describes the first administrator account.
type AdminSeed struct {
	Username string
	Email    string
	Password string
	// ResetPassword overwrites the password of an existing admin row.
	ResetPassword bool
}

// SeedApp creates the admin user with a default map and makes sure the
// installation id exists. Running it again is harmless.
func SeedApp(ctx context.Context, db *gorm.DB, admin AdminSeed) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	// 1. Admin account
	user := model.User{
		Username: admin.Username,
		Email:    admin.Email,
		Password: string(hashed),
		Role:     model.RoleAdmin,
	}
	if err := db.WithContext(ctx).Where(model.User{Username: admin.Username}).FirstOrCreate(&user).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if admin.ResetPassword {
		if err := db.WithContext(ctx).Model(&user).Update("password", string(hashed)).Error; err != nil {
			return fmt.Errorf("reset admin password: %w", err)
		}
	}
	slog.Info("admin user ready", "user_id", user.ID, "username", user.Username)

	// 2. Default map for the admin
	m := model.NetworkMap{UserID: user.ID, Name: DefaultMapName}
	if err := db.WithContext(ctx).Where(model.NetworkMap{UserID: user.ID, Name: DefaultMapName}).FirstOrCreate(&m).Error; err != nil {
		return fmt.Errorf("seed default map: %w", err)
	}

	// 3. Installation id
	id, err := repository.NewSettingRepository(db).EnsureInstallationID(ctx)
	if err != nil {
		return fmt.Errorf("seed installation id: %w", err)
	}
	slog.Info("installation id ready", "installation_id", id)
	return nil
}

// DefaultProducts is the portal catalog created by SeedPortal.
var DefaultProducts = []model.Product{
	{Name: "AMPNM Demo", Description: "7-day trial for up to 5 devices.", Price: 0, MaxDevices: 5, LicenseDurationDays: 7, IsDemo: true},
	{Name: "AMPNM Basic", Description: "One year, up to 25 devices.", Price: 49, MaxDevices: 25, LicenseDurationDays: 365},
	{Name: "AMPNM Professional", Description: "One year, up to 100 devices.", Price: 149, MaxDevices: 100, LicenseDurationDays: 365},
	{Name: "AMPNM Enterprise", Description: "One year, unlimited devices.", Price: 499, MaxDevices: model.UnlimitedDevices, LicenseDurationDays: 365},
}

// SeedPortal creates the product catalog.
func SeedPortal(ctx context.Context, db *gorm.DB) error {
	products := repository.NewProductRepository(db)
	for _, p := range DefaultProducts {
		if err := products.FirstOrCreate(ctx, &p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}
	slog.Info("portal products ready", "count", len(DefaultProducts))
	return nil
}
