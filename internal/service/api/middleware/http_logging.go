package middleware

import (
	"net/url"
	"strconv"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/service/api/constants"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/darkkaiser/autodelivery-server/pkg/strutil"
	"github.com/labstack/echo/v4"
)

// HTTPLogger 요청마다 메서드, 경로, 상태 코드, 지연 시간 등을 구조화된 로그로 남깁니다.
// app_key 같은 민감한 쿼리 파라미터는 마스킹됩니다.
func HTTPLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			latency := time.Since(start)

			bytesIn := req.Header.Get(echo.HeaderContentLength)
			if bytesIn == "" {
				bytesIn = "0"
			}

			applog.WithComponentAndFields(constants.ComponentMiddleware, applog.Fields{
				"method":        req.Method,
				"path":          req.URL.Path,
				"uri":           maskSensitiveQueryParams(req.RequestURI),
				"remote_ip":     c.RealIP(),
				"user_agent":    req.UserAgent(),
				"status":        res.Status,
				"bytes_in":      bytesIn,
				"bytes_out":     strconv.FormatInt(res.Size, 10),
				"latency_human": latency.String(),
				"request_id":    res.Header().Get(echo.HeaderXRequestID),
			}).Info("HTTP 요청")

			return nil
		}
	}
}

func maskSensitiveQueryParams(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	q := u.Query()
	masked := false
	for _, param := range constants.SensitiveQueryParams {
		if q.Has(param) {
			q.Set(param, strutil.MaskSensitiveData(q.Get(param)))
			masked = true
		}
	}

	if !masked {
		return uri
	}

	u.RawQuery = q.Encode()
	return u.String()
}
