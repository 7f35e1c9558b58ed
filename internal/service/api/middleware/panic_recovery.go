package middleware

import (
	"net/http"
	"runtime"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/constants"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/labstack/echo/v4"
)

const stackBufferSize = 4 << 10

// PanicRecovery 핸들러에서 발생한 패닉을 복구하여 500 응답으로 변환하고 스택과 함께 기록합니다.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					// 클라이언트 연결 중단은 net/http가 처리하도록 그대로 전파합니다.
					if r == http.ErrAbortHandler {
						panic(r)
					}

					recovered := apperrors.FromPanic(r, "API 핸들러 패닉")

					stack := make([]byte, stackBufferSize)
					length := runtime.Stack(stack, false)

					applog.WithComponentAndFields(constants.ComponentMiddleware, applog.Fields{
						"error":      recovered,
						"stack":      string(stack[:length]),
						"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
						"path":       c.Request().URL.Path,
					}).Error("PANIC RECOVERED")

					err = recovered
				}
			}()
			return next(c)
		}
	}
}
