// Package v1 운영 API v1 라우트를 등록합니다.
package v1

import (
	"github.com/darkkaiser/autodelivery-server/internal/service/api/middleware"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/v1/handler"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes 모든 v1 라우트는 앱 키 인증이 필요합니다.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, appKey string) {
	g := e.Group("/api/v1", middleware.RequireAppKey(appKey))

	jsonOnly := middleware.ValidateContentType(echo.MIMEApplicationJSON)

	g.POST("/events", h.PublishEventHandler, jsonOnly)
	g.POST("/delivery-tests", h.IssueDeliveryTestHandler, jsonOnly)

	g.GET("/inventory", h.ListInventoryHandler)
	g.POST("/inventory", h.CreateProductsFileHandler, jsonOnly)
	g.POST("/inventory/:name/units", h.AddUnitsHandler, jsonOnly)
	g.DELETE("/inventory/:name", h.DeleteProductsFileHandler)

	g.GET("/rules", h.ListRulesHandler)
	g.POST("/rules", h.CreateRuleHandler, jsonOnly)
	g.GET("/rules/:name", h.GetRuleHandler)
	g.PATCH("/rules/:name", h.UpdateRuleHandler, jsonOnly)
	g.DELETE("/rules/:name", h.DeleteRuleHandler)

	g.GET("/lots", h.ListLotsHandler)

	g.GET("/block-list", h.ListBlockedUsersHandler)
	g.PUT("/block-list/:username", h.BlockUserHandler)
	g.DELETE("/block-list/:username", h.UnblockUserHandler)
}
