package httputil

import (
	"net/http"

	"github.com/darkkaiser/autodelivery-server/internal/service/api/model/response"
	"github.com/labstack/echo/v4"
)

func newHTTPError(code int, message string) error {
	return echo.NewHTTPError(code, response.ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}

func NewBadRequestError(message string) error {
	return newHTTPError(http.StatusBadRequest, message)
}

func NewUnauthorizedError(message string) error {
	return newHTTPError(http.StatusUnauthorized, message)
}

func NewNotFoundError(message string) error {
	return newHTTPError(http.StatusNotFound, message)
}

func NewConflictError(message string) error {
	return newHTTPError(http.StatusConflict, message)
}

func NewTooManyRequestsError(message string) error {
	return newHTTPError(http.StatusTooManyRequests, message)
}

func NewUnsupportedMediaTypeError(message string) error {
	return newHTTPError(http.StatusUnsupportedMediaType, message)
}

func NewServiceUnavailableError(message string) error {
	return newHTTPError(http.StatusServiceUnavailable, message)
}

// Success 본문 없는 성공 응답
func Success(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse{
		ResultCode: 0,
		Message:    "성공",
	})
}
