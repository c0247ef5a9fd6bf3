package routes

import (
	"context"

	"ampnm-backend/config"
	deliveryhttp "ampnm-backend/internal/delivery/http"
	"ampnm-backend/internal/handler"
	"ampnm-backend/internal/license"
	"ampnm-backend/internal/metrics"
	"ampnm-backend/internal/middleware"
	"ampnm-backend/internal/model"
	"ampnm-backend/internal/repository"
	"ampnm-backend/internal/session"
	"ampnm-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	get  = fiber.MethodGet
	post = fiber.MethodPost
)

// SetupAppRoutes mounts the monitoring API on /api.php (alias /api) together
// with /health and /metrics.
func SetupAppRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, sessions session.Store) error {
	users := repository.NewUserRepository(db)
	maps := repository.NewMapRepository(db)
	devices := repository.NewDeviceRepository(db)
	settings := repository.NewSettingRepository(db)
	dashboard := repository.NewDashboardRepository(db)

	resolver := license.NewResolver(settings, devices, cfg.License.APIURL,
		config.Duration(cfg.License.StatusTimeout), config.Duration(cfg.License.VerifyTimeout))
	ttl := config.Duration(cfg.Session.TTL)

	userHdl := deliveryhttp.NewUserHandler(usecase.NewUserUsecase(users, sessions, ttl), deliveryhttp.CookieConfig{
		Name:   cfg.Session.Cookie,
		Secure: cfg.Session.Secure,
	})
	licenseHdl := handler.NewLicenseHandler(resolver, settings)
	deviceHdl := handler.NewDeviceHandler(devices, maps, resolver)
	mapHdl := handler.NewMapHandler(maps)
	dashboardHdl := handler.NewDashboardHandler(dashboard)

	actions := []Action{
		{Name: "get_license_status", Methods: []string{get}, Access: Public, Handler: licenseHdl.GetLicenseStatus},
		{Name: "set_app_license_key", Methods: []string{post}, Access: SetupOrAdmin, Handler: licenseHdl.SetAppLicenseKey},
		{Name: "login", Methods: []string{post}, Access: Public, Handler: userHdl.Login},
		{Name: "register", Methods: []string{post}, Access: Public, Handler: userHdl.Register},
		{Name: "logout", Methods: []string{post}, Access: Authenticated, Handler: userHdl.Logout},
		{Name: "get_user_info", Methods: []string{get}, Access: Authenticated, Handler: userHdl.GetUserInfo},

		// Devices and maps
		{Name: "get_network_devices", Methods: []string{get}, Access: Authenticated, Handler: deviceHdl.GetNetworkDevices},
		{Name: "add_device", Methods: []string{post}, Access: Authenticated, Handler: deviceHdl.AddDevice},
		{Name: "update_device_position", Methods: []string{post}, Access: Authenticated, Handler: deviceHdl.UpdateDevicePositions},
		{Name: "delete_device", Methods: []string{post}, Access: Authenticated, Handler: deviceHdl.DeleteDevice},
		{Name: "get_maps", Methods: []string{get}, Access: Authenticated, Handler: mapHdl.GetMaps},
		{Name: "create_map", Methods: []string{post}, Access: Authenticated, Handler: mapHdl.CreateMap},
		{Name: "update_map", Methods: []string{post}, Access: Authenticated, Handler: mapHdl.UpdateMap},
		{Name: "delete_map", Methods: []string{post}, Access: Authenticated, Handler: mapHdl.DeleteMap},
		{Name: "get_dashboard_stats", Methods: []string{get}, Access: Authenticated, Handler: dashboardHdl.GetStats},

		// User management
		{Name: "get_users", Methods: []string{get}, Access: AdminOnly, Handler: userHdl.GetUsers},
		{Name: "add_user", Methods: []string{post}, Access: AdminOnly, Handler: userHdl.AddUser},
		{Name: "update_user_role", Methods: []string{post}, Access: AdminOnly, Handler: userHdl.UpdateUserRole},
		{Name: "delete_user", Methods: []string{post}, Access: AdminOnly, Handler: userHdl.DeleteUser},
	}

	licenseConfigured := func(ctx context.Context) (bool, error) {
		key, err := settings.Get(ctx, model.SettingLicenseKey)
		return key != "", err
	}
	d, err := NewDispatcher(actions, middleware.Session(sessions, users, cfg.Session.Cookie), licenseConfigured)
	if err != nil {
		return err
	}

	app.Get("/health", handler.Health(db))
	app.Get("/metrics", metrics.Handler())
	d.Mount(app, "/api.php", "/api")
	return nil
}
