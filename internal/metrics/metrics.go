package metrics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LicenseChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ampnm_license_checks_total",
		Help: "License status resolutions by resulting status code.",
	}, []string{"status_code"})

	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ampnm_api_requests_total",
		Help: "Dispatched API actions by action name and HTTP status.",
	}, []string{"action", "code"})

	DeviceLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ampnm_device_limit_rejections_total",
		Help: "add_device calls refused by the license gate.",
	})
)

// ObserveAction records one dispatched action.
func ObserveAction(action string, status int) {
	APIRequests.WithLabelValues(action, strconv.Itoa(status)).Inc()
}

// Handler exposes the default registry on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
