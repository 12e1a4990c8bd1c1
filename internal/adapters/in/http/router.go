package http

import (
	"context"
	"net/http"

	"escrow/api"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// BasePath prefixes every escrow route.
const BasePath = "/api/v1"

// NewEcho builds the HTTP surface: health, metrics, swagger UI and the
// validated /api/v1 routes of s.
func NewEcho(ctx context.Context, s *Server, gatherer prometheus.Gatherer) (*echo.Echo, error) {
	doc, err := LoadSpec(ctx, api.OpenAPI)
	if err != nil {
		return nil, err
	}
	validate, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.WARN)
	e.Use(Tracing("escrow/http"))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	s.Register(e.Group(BasePath, validate))
	return e, nil
}
