package middleware

import (
	"mime"

	"github.com/darkkaiser/autodelivery-server/internal/service/api/constants"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// ValidateContentType 본문이 있는 요청의 Content-Type이 expected와 다르면 415를 반환합니다.
func ValidateContentType(expected string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.ContentLength == 0 {
				return next(c)
			}

			contentType := req.Header.Get(echo.HeaderContentType)
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || mediaType != expected {
				applog.WithComponentAndFields(constants.ComponentMiddleware, applog.Fields{
					"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
					"path":       req.URL.Path,
					"expected":   expected,
					"actual":     contentType,
				}).Warn("지원하지 않는 Content-Type 요청")

				return ErrUnsupportedMediaType
			}

			return next(c)
		}
	}
}
