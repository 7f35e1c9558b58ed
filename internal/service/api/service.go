// Package api 운영용 HTTP API 서비스입니다.
//
// 마켓플레이스 클라이언트 프로세스가 이벤트를 전달하는 웹훅과, 시험 배송 키 발급, 재고 및 차단 목록 관리,
// 헬스체크와 Prometheus 메트릭 엔드포인트를 제공합니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/pkg/version"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/constants"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/handler/system"
	v1 "github.com/darkkaiser/autodelivery-server/internal/service/api/v1"
	v1handler "github.com/darkkaiser/autodelivery-server/internal/service/api/v1/handler"
	"github.com/darkkaiser/autodelivery-server/internal/service/notification"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/labstack/echo/v4"
)

const shutdownTimeout = 5 * time.Second

// Deps Service가 사용하는 구성 요소
type Deps struct {
	V1 v1handler.Deps

	// Checkers 헬스체크 대상 의존성. 키는 응답의 의존성 이름입니다.
	Checkers map[string]system.HealthChecker

	// Metrics nil이면 /metrics 라우트를 등록하지 않습니다.
	Metrics http.Handler

	// Relay HTTP 서버를 띄우지 못했을 때 운영자에게 알립니다. nil일 수 있습니다.
	Relay notification.Relay

	BuildInfo version.Info
}

// Service 운영 API 서비스
type Service struct {
	cfg   config.APIConfig
	debug bool

	deps Deps

	running   bool
	runningMu sync.Mutex
}

func NewService(cfg config.APIConfig, debug bool, deps Deps) *Service {
	return &Service{
		cfg:   cfg,
		debug: debug,
		deps:  deps,
	}
}

// Start HTTP 서버를 백그라운드에서 시작합니다.
// serviceStopCtx가 취소되면 서버를 정상 종료한 뒤 serviceStopWG.Done()을 호출합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarting)

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(constants.ComponentService).Warn(constants.LogMsgServiceAlreadyStarted)
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStarted)

	return nil
}

func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

func (s *Service) setupServer() *echo.Echo {
	e := NewHTTPServer(HTTPServerConfig{
		Debug:        s.debug,
		AllowOrigins: s.cfg.AllowOrigins,
	})

	RegisterRoutes(e, system.NewHandler(s.deps.Checkers, s.deps.BuildInfo), s.deps.Metrics)
	v1.RegisterRoutes(e, v1handler.NewHandler(s.deps.V1), s.cfg.AppKey)

	return e
}

func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port": s.cfg.ListenPort,
	}).Debug(constants.LogMsgServiceHTTPServerStarting)

	s.handleServerError(e.Start(fmt.Sprintf(":%d", s.cfg.ListenPort)))
}

func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceHTTPServerStopped)
		return
	}

	message := constants.LogMsgServiceHTTPServerFatalError
	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port":  s.cfg.ListenPort,
		"error": err,
	}).Error(message)

	if s.deps.Relay != nil {
		s.deps.Relay.Notify(fmt.Sprintf("%s\n\n%s", message, err), nil)
	}
}

func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopping)

	case <-httpServerDone:
		applog.WithComponent(constants.ComponentService).Error(constants.LogMsgServiceUnexpectedExit)

		s.cleanup()

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
			"error": err,
		}).Error(constants.LogMsgServiceHTTPServerShutdownError)
	}

	<-httpServerDone

	s.cleanup()
}

func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopped)
}
