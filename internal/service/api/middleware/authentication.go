package middleware

import (
	"crypto/subtle"

	"github.com/darkkaiser/autodelivery-server/internal/service/api/constants"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// RequireAppKey X-App-Key 헤더(또는 app_key 쿼리 파라미터)가 설정된 앱 키와 일치하는 요청만 통과시킵니다.
func RequireAppKey(appKey string) echo.MiddlewareFunc {
	if appKey == "" {
		panic("RequireAppKey: appKey는 필수입니다")
	}

	expected := []byte(appKey)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			given := extractAppKey(c)
			if given == "" {
				return ErrAppKeyRequired
			}

			if subtle.ConstantTimeCompare([]byte(given), expected) != 1 {
				applog.WithComponentAndFields(constants.ComponentMiddleware, applog.Fields{
					"method":    c.Request().Method,
					"path":      c.Path(),
					"remote_ip": c.RealIP(),
				}).Warn("인증 실패: app_key가 일치하지 않습니다")

				return ErrInvalidAppKey
			}

			return next(c)
		}
	}
}

func extractAppKey(c echo.Context) string {
	if appKey := c.Request().Header.Get(constants.HeaderAppKey); appKey != "" {
		return appKey
	}

	appKey := c.QueryParam(constants.QueryParamAppKey)
	if appKey != "" {
		applog.WithComponentAndFields(constants.ComponentMiddleware, applog.Fields{
			"method":    c.Request().Method,
			"path":      c.Path(),
			"remote_ip": c.RealIP(),
		}).Warn("보안 경고: 쿼리 파라미터로 app_key 전달됨 (헤더 사용 권장)")
	}
	return appKey
}
