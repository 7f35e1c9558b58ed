// Package httputil 운영 API의 에러 처리와 응답 생성 헬퍼를 제공합니다.
package httputil

import (
	"net/http"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/constants"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/model/response"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// ErrorHandler Echo의 HTTPErrorHandler로 등록되어 모든 에러를 ErrorResponse JSON으로 변환합니다.
//
// *echo.HTTPError는 그 코드를 그대로 사용하고, AppError는 ErrorType에 따라 상태 코드를 결정합니다.
// 그 밖의 에러는 500으로 응답하며 내부 메시지는 노출하지 않습니다.
func ErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := constants.ErrMsgInternalServer

	var he *echo.HTTPError
	if apperrors.As(err, &he) {
		code = he.Code
		switch msg := he.Message.(type) {
		case string:
			message = msg
		case response.ErrorResponse:
			message = msg.Message
		}
		if code == http.StatusNotFound && message == http.StatusText(http.StatusNotFound) {
			message = constants.ErrMsgNotFound
		}
	} else if status, ok := statusFromAppError(err); ok {
		code = status
		message = err.Error()
	}

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}

	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(constants.ComponentErrorHandler, fields).Error(constants.LogMsgHTTP5xxServerError)
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(constants.ComponentErrorHandler, fields).Warn(constants.LogMsgHTTP4xxClientError)
	}

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}

	_ = c.JSON(code, response.ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}

// statusFromAppError 클라이언트가 원인인 AppError만 4xx로 매핑합니다.
func statusFromAppError(err error) (int, bool) {
	switch apperrors.UnderlyingType(err) {
	case apperrors.InvalidInput:
		return http.StatusBadRequest, true
	case apperrors.Unauthorized:
		return http.StatusUnauthorized, true
	case apperrors.NotFound:
		return http.StatusNotFound, true
	case apperrors.Conflict:
		return http.StatusConflict, true
	case apperrors.Unavailable:
		return http.StatusServiceUnavailable, true
	}
	return 0, false
}
