// Package system 헬스체크, 버전 조회 등 인증이 필요 없는 시스템 엔드포인트를 제공합니다.
package system

import (
	"net/http"
	"runtime"
	"slices"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/pkg/version"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/constants"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/model/system"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// HealthChecker 정상 상태가 아니면 에러를 반환합니다.
type HealthChecker interface {
	Health() error
}

// Handler 시스템 엔드포인트 핸들러
type Handler struct {
	checkers map[string]HealthChecker

	buildInfo version.Info

	serverStartTime time.Time
}

// NewHandler checkers의 키는 헬스체크 응답의 의존성 이름으로 사용됩니다.
func NewHandler(checkers map[string]HealthChecker, buildInfo version.Info) *Handler {
	return &Handler{
		checkers:        checkers,
		buildInfo:       buildInfo,
		serverStartTime: time.Now(),
	}
}

// HealthCheckHandler GET /health
//
// 의존성 중 하나라도 비정상이면 전체 상태는 unhealthy이며 503을 반환합니다.
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"endpoint":  "/health",
		"remote_ip": c.RealIP(),
	}).Debug("헬스체크 요청")

	names := lo.Keys(h.checkers)
	slices.Sort(names)

	status := constants.HealthStatusHealthy
	deps := make(map[string]system.DependencyStatus, len(names))
	for _, name := range names {
		if err := h.checkers[name].Health(); err != nil {
			status = constants.HealthStatusUnhealthy
			deps[name] = system.DependencyStatus{Status: constants.HealthStatusUnhealthy, Message: err.Error()}
			continue
		}
		deps[name] = system.DependencyStatus{Status: constants.HealthStatusHealthy, Message: constants.MsgDepStatusHealthy}
	}

	code := http.StatusOK
	if status != constants.HealthStatusHealthy {
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, system.HealthResponse{
		Status:       status,
		Uptime:       int64(time.Since(h.serverStartTime).Seconds()),
		Dependencies: deps,
	})
}

// VersionHandler GET /version
func (h *Handler) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, system.VersionResponse{
		Version:     h.buildInfo.Version,
		Commit:      h.buildInfo.Commit,
		BuildDate:   h.buildInfo.BuildDate,
		BuildNumber: h.buildInfo.BuildNumber,
		GoVersion:   runtime.Version(),
	})
}
