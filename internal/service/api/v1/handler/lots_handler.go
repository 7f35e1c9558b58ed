package handler

import (
	"net/http"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	"github.com/labstack/echo/v4"
)

// LotsResponse 로컬에 알려진 판매자 상품 목록
type LotsResponse struct {
	Lots []marketplace.Lot `json:"lots"`

	// RefreshedAt 한 번도 갱신되지 않았으면 null입니다.
	RefreshedAt *time.Time `json:"refreshed_at"`
}

// ListLotsHandler GET /api/v1/lots
func (h *Handler) ListLotsHandler(c echo.Context) error {
	resp := LotsResponse{Lots: h.lots.KnownLots()}
	if resp.Lots == nil {
		resp.Lots = []marketplace.Lot{}
	}
	if at := h.lots.RefreshedAt(); !at.IsZero() {
		resp.RefreshedAt = &at
	}

	return c.JSON(http.StatusOK, resp)
}
