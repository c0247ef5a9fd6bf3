package routes

import (
	"errors"
	"time"

	"ampnm-backend/config"
	deliveryhttp "ampnm-backend/internal/delivery/http"
	"ampnm-backend/internal/handler"
	"ampnm-backend/internal/mailer"
	"ampnm-backend/internal/metrics"
	"ampnm-backend/internal/middleware"
	"ampnm-backend/internal/repository"
	"ampnm-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// SetupPortalRoutes mounts the license portal on /portal_api.php (alias
// /portal/api) and the verification endpoint on /verify_license.php.
func SetupPortalRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, mail mailer.Sender) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required for the portal")
	}
	secret := []byte(cfg.JWTSecret)

	customers := usecase.NewCustomerUsecase(repository.NewCustomerRepository(db), secret)
	licenses := usecase.NewLicenseUsecase(repository.NewLicenseRepository(db), repository.NewProductRepository(db), mail)
	hdl := deliveryhttp.NewPortalHandler(customers, licenses)

	actions := []Action{
		{Name: "login", Methods: []string{post}, Access: Public, Handler: hdl.Login},
		{Name: "register", Methods: []string{post}, Access: Public, Handler: hdl.Register},
		{Name: "get_profile", Methods: []string{get}, Access: Authenticated, Handler: hdl.GetProfile},
		{Name: "update_profile", Methods: []string{post}, Access: Authenticated, Handler: hdl.UpdateProfile},
		{Name: "get_products", Methods: []string{get}, Access: Authenticated, Handler: hdl.GetProducts},
		{Name: "get_demo_license", Methods: []string{get, post}, Access: Public, Handler: hdl.GetDemoLicense},
		{Name: "verify_license", Methods: []string{post}, Access: Public, Handler: hdl.VerifyLicense},
	}
	d, err := NewDispatcher(actions, middleware.Auth(secret), nil)
	if err != nil {
		return err
	}

	// get_demo_license is public and may send mail, so it is throttled per client
	demoLimit := limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Query("action") != "get_demo_license"
		},
		Max:        cfg.DemoRateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return handler.Fail(c, fiber.StatusTooManyRequests, "Too many demo license requests. Try again later.")
		},
	})

	app.Get("/health", handler.Health(db))
	app.Get("/metrics", metrics.Handler())
	app.Post("/verify_license.php", hdl.VerifyLicense)
	for _, p := range []string{"/portal_api.php", "/portal/api"} {
		app.Use(p, demoLimit)
		d.Mount(app, p)
	}
	app.Hooks().OnShutdown(func() error {
		licenses.WaitMail()
		return nil
	})
	return nil
}
