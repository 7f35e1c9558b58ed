package handler

import (
	"net/http"
	"strings"

	"github.com/darkkaiser/autodelivery-server/internal/service/api/httputil"
	"github.com/labstack/echo/v4"
)

// BlockListResponse 차단된 사용자 목록
type BlockListResponse struct {
	Users []string `json:"users"`
}

// ListBlockedUsersHandler GET /api/v1/block-list
func (h *Handler) ListBlockedUsersHandler(c echo.Context) error {
	users := h.blockList.Users()
	if users == nil {
		users = []string{}
	}
	return c.JSON(http.StatusOK, BlockListResponse{Users: users})
}

// BlockUserHandler PUT /api/v1/block-list/:username
func (h *Handler) BlockUserHandler(c echo.Context) error {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		return httputil.NewBadRequestError("사용자명은 필수입니다")
	}

	if h.blockList.Add(username) {
		if err := h.blockList.Save(); err != nil {
			return err
		}
		h.log(c).WithField("username", username).Info("사용자 차단")
	}

	return httputil.Success(c)
}

// UnblockUserHandler DELETE /api/v1/block-list/:username
func (h *Handler) UnblockUserHandler(c echo.Context) error {
	username := c.Param("username")
	if !h.blockList.Remove(username) {
		return httputil.NewNotFoundError("차단 목록에 없는 사용자입니다")
	}

	if err := h.blockList.Save(); err != nil {
		return err
	}
	h.log(c).WithField("username", username).Info("사용자 차단 해제")

	return httputil.Success(c)
}
