package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// DashboardFile is served at / from the web directory.
const DashboardFile = "dashboard.html"

// Use installs request IDs, access logging, CORS and, when metrics is not
// nil, request metrics. Call it before New so that Recover ends up innermost.
func Use(e *echo.Echo, logger *zap.Logger, metrics *Metrics) {
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	if metrics != nil {
		e.Use(metrics.Middleware())
	}
}

// MountMetrics exposes the registry at path.
func MountMetrics(e *echo.Echo, path string, metrics *Metrics) {
	e.GET(path, metrics.Handler())
}

// Static serves the dashboard at / and the rest of dir as static files.
// It reports false and registers nothing when dir is not a directory.
func Static(e *echo.Echo, dir string) bool {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return false
	}
	e.File("/", filepath.Join(dir, DashboardFile))
	e.Static("/", dir)
	return true
}
