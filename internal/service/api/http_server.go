package api

import (
	"net/http"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/service/api/constants"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/httputil"
	appmiddleware "github.com/darkkaiser/autodelivery-server/internal/service/api/middleware"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HTTPServerConfig HTTP 서버 생성 옵션
type HTTPServerConfig struct {
	Debug bool

	AllowOrigins []string

	// RequestTimeout 0이면 constants.DefaultRequestTimeout을 사용합니다.
	RequestTimeout time.Duration
}

// NewHTTPServer 공통 미들웨어가 적용된 Echo 인스턴스를 생성합니다.
//
// 미들웨어 순서:
//  1. PanicRecovery: 이후 모든 미들웨어와 핸들러의 패닉을 복구
//  2. RequestID: 로그 상관관계 추적
//  3. Server 헤더 제거
//  4. HTTPLogger: 요청 로그
//  5. RateLimiting: IP별 속도 제한
//  6. BodyLimit, Timeout, CORS, Secure
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = constants.DefaultReadTimeout
	e.Server.ReadHeaderTimeout = constants.DefaultReadHeaderTimeout
	e.Server.WriteTimeout = constants.DefaultWriteTimeout
	e.Server.IdleTimeout = constants.DefaultIdleTimeout

	e.Logger = appmiddleware.Logger{Logger: applog.StandardLogger()}

	e.HTTPErrorHandler = httputil.ErrorHandler

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = constants.DefaultRequestTimeout
	}

	e.Use(appmiddleware.PanicRecovery())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, "")
			return next(c)
		}
	})
	e.Use(appmiddleware.HTTPLogger())
	e.Use(appmiddleware.RateLimiting(constants.DefaultRateLimitPerSecond, constants.DefaultRateLimitBurst))
	e.Use(middleware.BodyLimit(constants.DefaultMaxBodySize))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: timeout,
	}))
	if len(cfg.AllowOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
		}))
	}
	e.Use(middleware.Secure())

	return e
}
