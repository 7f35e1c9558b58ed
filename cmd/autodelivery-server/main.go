package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/darkkaiser/autodelivery-server/internal/blocklist"
	"github.com/darkkaiser/autodelivery-server/internal/bot"
	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/deliverytest"
	"github.com/darkkaiser/autodelivery-server/internal/event"
	"github.com/darkkaiser/autodelivery-server/internal/inventory"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace/funpay"
	"github.com/darkkaiser/autodelivery-server/internal/metrics"
	"github.com/darkkaiser/autodelivery-server/internal/pkg/version"
	"github.com/darkkaiser/autodelivery-server/internal/reconcile"
	"github.com/darkkaiser/autodelivery-server/internal/service/api"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/handler/system"
	v1handler "github.com/darkkaiser/autodelivery-server/internal/service/api/v1/handler"
	"github.com/darkkaiser/autodelivery-server/internal/service/notification"
	"github.com/darkkaiser/autodelivery-server/internal/service/notification/telegram"
	"github.com/darkkaiser/autodelivery-server/internal/service/runner"
	"github.com/darkkaiser/autodelivery-server/internal/service/scheduler"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
)

const component = "main"

const banner = `
     _         _        ____       _ _
    / \  _   _| |_ ___ |  _ \  ___| (_)_   _____ _ __ _   _
   / _ \| | | | __/ _ \| | | |/ _ \ | \ \ / / _ \ '__| | | |
  / ___ \ |_| | || (_) | |_| |  __/ | |\ V /  __/ |  | |_| |
 /_/   \_\__,_|\__\___/|____/ \___|_|_| \_/ \___|_|   \__, |
                                                      |___/  %s
--------------------------------------------------------------------------------
`

// service main이 시작하고 종료를 기다리는 구성 요소
type service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}

// app 조립이 끝난 서버 구성 요소
type app struct {
	runtime  *bot.Runtime
	services []service
}

func main() {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	filename := config.DefaultFilename
	if len(os.Args) > 1 {
		filename = os.Args[1]
	}

	appConfig, err := config.LoadWithFile(filename)
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	logOpts := applog.NewProductionOptions(config.AppName)
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	buildInfo := version.Get()
	fmt.Printf(banner, buildInfo.Version)

	applog.WithComponentAndFields(component, applog.Fields{
		"version":  buildInfo.String(),
		"config":   filename,
		"username": appConfig.Account.Username,
	}).Info("서버 초기화 시작")

	for _, w := range appConfig.VerifyRecommendations() {
		applog.WithComponent(component).Warn(w)
	}

	a, err := newApp(appConfig, buildInfo)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("서버 구성 요소 생성 실패")
		appLogCloser.Close()
		os.Exit(1)
	}

	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	for _, s := range a.services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			cancel()
			serviceStopWG.Wait()

			appLogCloser.Close()
			os.Exit(1)
		}
	}

	if err := a.runtime.Emit(serviceStopCtx, event.PostStartEvent{Meta: event.NewMeta()}); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("시작 이벤트 처리 실패")
	}

	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent(component).Info("서버 가동 완료")

	<-termC

	applog.WithComponent(component).Info("종료 신호 수신: 모든 서비스를 중지합니다")
	cancel()
	serviceStopWG.Wait()
}

// newApp 설정으로부터 모든 구성 요소를 생성하고 서로 연결합니다.
//
// 반환된 services는 시작 순서대로 정렬되어 있습니다. 알림 서비스와 러너가 먼저 시작되어야
// 스케줄러와 API가 받은 요청을 처리할 수 있습니다.
func newApp(cfg *config.AppConfig, buildInfo version.Info) (*app, error) {
	m := metrics.New()

	configs := config.NewStore(config.NewSnapshot(cfg))

	inv, err := inventory.NewStore(cfg.Storage.ProductsDir)
	if err != nil {
		return nil, err
	}

	blockList, err := blocklist.Open(cfg.BlockList.File)
	if err != nil {
		return nil, err
	}

	var relay notification.Service = notification.NewNopService()
	if cfg.Telegram.Enabled() {
		tg, err := telegram.New(cfg.Telegram, m)
		if err != nil {
			return nil, err
		}
		relay = tg
	}

	keys := deliverytest.NewKeys()
	r := runner.New(cfg.Runner.MaxWorkers, m)

	rt := bot.New(bot.Deps{
		Configs:   configs,
		Account:   cfg.Account,
		Client:    funpay.New(cfg.Account),
		Inventory: inv,
		BlockList: blockList,
		Keys:      keys,
		Relay:     relay,
		Runner:    r,
		Metrics:   m,
		Retry: marketplace.RetryPolicy{
			MaxAttempts: cfg.Reconcile.MaxAttempts,
			Delay:       cfg.Reconcile.RetryDelay,
		},
		Reconcile: reconcile.PolicyFromConfig(cfg.Reconcile),
	})

	sched := scheduler.NewService([]scheduler.Job{
		{Name: "lots_refresh", Spec: cfg.LotsRefresh.Schedule, Run: rt.RefreshLots},
		{Name: "reconcile", Spec: cfg.Reconcile.Schedule, Run: func(context.Context) error {
			return rt.Reconciler().RunDetached(r)
		}},
	}, relay)

	services := []service{relay, r, sched}

	if cfg.API.Enabled {
		services = append(services, api.NewService(cfg.API, cfg.Debug, api.Deps{
			V1: v1handler.Deps{
				Emitter:   rt,
				Configs:   configs,
				Keys:      keys,
				Inventory: inv,
				BlockList: blockList,
				Lots:      rt.Lots(),
			},
			Checkers:  map[string]system.HealthChecker{"notification": relay},
			Metrics:   m.Handler(),
			Relay:     relay,
			BuildInfo: buildInfo,
		}))
	}

	return &app{runtime: rt, services: services}, nil
}
