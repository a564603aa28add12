package api

import (
	"context"
	"errors"
	"net/http"

	"dnsfilter/app/src/server/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Reporter is the read side the handlers depend on. *service.Service implements it.
type Reporter interface {
	Stats(ctx context.Context) (service.Stats, error)
	TopBlocked(ctx context.Context, limit int) ([]service.TopBlockedDomain, error)
	BlockedLogs(ctx context.Context, limit int) ([]service.BlockedLog, error)
	AllowedLogs(ctx context.Context, limit int) ([]service.AllowedLog, error)
	AllDomains(ctx context.Context, limit int) ([]string, error)
}

const (
	msgStatsFailed   = "Failed to fetch statistics"
	msgNotFound      = "Endpoint not found"
	msgInternalError = "Internal server error"
)

type errorBody struct {
	Error string `json:"error"`
}

type API struct {
	svc     Reporter
	logger  *zap.Logger
	metrics *Metrics
}

// New registers the report routes on e and installs the JSON error handler.
// Panics in handlers are recovered and answered like any other error.
// metrics may be nil.
func New(e *echo.Echo, svc Reporter, logger *zap.Logger, metrics *Metrics) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &API{svc: svc, logger: logger, metrics: metrics}
	e.HTTPErrorHandler = a.handleError
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			a.logger.Error("panic recovered",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.ByteString("stack", stack))
			return err
		},
	}))

	g := e.Group("/api")
	g.GET("/stats", a.getStats)
	g.GET("/top-blocked", a.getTopBlocked)
	g.GET("/logs/blocked", a.getBlockedLogs)
	g.GET("/logs/allowed", a.getAllowedLogs)
	g.GET("/domains", a.getDomains)
	return a
}

// queryLimit reads ?limit=. Missing or unparsable values fall back to def.
func queryLimit(c echo.Context, def int) int {
	limit := def
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return def
	}
	return limit
}

func (a *API) reportFailed(report string, err error) {
	a.logger.Error("report query failed", zap.String("report", report), zap.Error(err))
	a.metrics.reportFailed(report)
}

func (a *API) getStats(c echo.Context) error {
	stats, err := a.svc.Stats(c.Request().Context())
	if err != nil {
		a.reportFailed("stats", err)
		return c.JSON(http.StatusInternalServerError, errorBody{Error: msgStatsFailed})
	}
	return c.JSON(http.StatusOK, stats)
}

// The list endpoints answer 200 with an empty array when the query fails.

func (a *API) getTopBlocked(c echo.Context) error {
	out, err := a.svc.TopBlocked(c.Request().Context(), queryLimit(c, service.DefaultTopBlockedLimit))
	if err != nil {
		a.reportFailed("top_blocked", err)
		return c.JSON(http.StatusOK, []service.TopBlockedDomain{})
	}
	return c.JSON(http.StatusOK, out)
}

func (a *API) getBlockedLogs(c echo.Context) error {
	out, err := a.svc.BlockedLogs(c.Request().Context(), queryLimit(c, service.DefaultLogLimit))
	if err != nil {
		a.reportFailed("blocked_logs", err)
		return c.JSON(http.StatusOK, []service.BlockedLog{})
	}
	return c.JSON(http.StatusOK, out)
}

func (a *API) getAllowedLogs(c echo.Context) error {
	out, err := a.svc.AllowedLogs(c.Request().Context(), queryLimit(c, service.DefaultLogLimit))
	if err != nil {
		a.reportFailed("allowed_logs", err)
		return c.JSON(http.StatusOK, []service.AllowedLog{})
	}
	return c.JSON(http.StatusOK, out)
}

func (a *API) getDomains(c echo.Context) error {
	out, err := a.svc.AllDomains(c.Request().Context(), queryLimit(c, service.DefaultDomainLimit))
	if err != nil {
		a.reportFailed("domains", err)
		return c.JSON(http.StatusOK, []string{})
	}
	return c.JSON(http.StatusOK, out)
}

// handleError turns unmatched routes into 404 and everything else into 500.
func (a *API) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := errorBody{Error: msgInternalError}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			status = http.StatusNotFound
			body.Error = msgNotFound
		}
	}

	if status == http.StatusInternalServerError {
		a.logger.Error("server error",
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err))
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		a.logger.Error("write error response", zap.Error(werr))
	}
}
