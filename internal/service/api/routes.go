package api

import (
	"net/http"

	"github.com/darkkaiser/autodelivery-server/internal/service/api/handler/system"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes 인증이 필요 없는 시스템 라우트를 등록합니다.
func RegisterRoutes(e *echo.Echo, h *system.Handler, metricsHandler http.Handler) {
	e.GET("/health", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)

	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}
}
