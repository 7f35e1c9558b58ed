package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/darkkaiser/autodelivery-server/internal/service/notification"
	"github.com/darkkaiser/autodelivery-server/pkg/cronx"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/robfig/cron/v3"
)

// component Scheduler 서비스의 로깅용 컴포넌트 이름
const component = "scheduler.service"

// jobTimeout 작업 1회 실행의 최대 시간
const jobTimeout = 5 * time.Minute

// Job 주기적으로 실행할 작업
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler 판매 목록 갱신, 주기적 목록 조정 같은 작업을 Cron 스케줄에 맞춰 실행하는 서비스입니다.
type Scheduler struct {
	jobs []Job

	cron *cron.Cron

	// relay 작업 실패를 운영자에게 알립니다.
	relay notification.Relay

	running   bool
	runningMu sync.Mutex
}

// NewService 새로운 Scheduler 서비스 인스턴스를 생성합니다. Spec이 비어 있는 작업은 등록하지 않습니다.
func NewService(jobs []Job, relay notification.Relay) *Scheduler {
	if relay == nil {
		panic("Relay는 필수입니다")
	}

	return &Scheduler{
		jobs:  jobs,
		relay: relay,
	}
}

// Start 스케줄러를 시작하고 작업들을 Cron 엔진에 등록합니다.
//
// serviceStopCtx가 취소되면 실행 중인 작업이 끝나기를 기다린 뒤 serviceStopWG.Done()을 호출합니다.
func (s *Scheduler) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Scheduler 서비스 초기화 프로세스를 시작합니다")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("Scheduler 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	// - StandardParser: 초 단위를 포함한 6필드 형식
	// - SkipIfStillRunning: 이전 실행이 끝나지 않았으면 이번 실행을 건너뜀
	// - Recover: 작업의 패닉이 엔진을 멈추지 않도록 복구. SkipIfStillRunning 안쪽에 두어야 패닉 후에도 실행 토큰이 반환됩니다.
	cronLogger := cron.VerbosePrintfLogger(applog.StandardLogger())
	s.cron = cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(cronLogger),
		cron.WithChain(
			cron.SkipIfStillRunning(cronLogger),
			cron.Recover(cronLogger),
		),
	)

	s.registerJobs()

	s.cron.Start()
	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"registered_schedules": len(s.cron.Entries()),
		"total_defined_jobs":   len(s.jobs),
	}).Info("서비스 시작 완료: Scheduler 서비스가 정상적으로 초기화되었습니다")

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.Stop()
	}()

	return nil
}

// Stop 실행 중인 스케줄러를 중지하고 진행 중인 작업의 완료를 기다립니다.
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	applog.WithComponent(component).Info("종료 절차 진입: Scheduler 서비스 중지 시그널을 수신했습니다")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	s.cron = nil
	s.running = false

	applog.WithComponent(component).Info("Scheduler 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}

func (s *Scheduler) registerJobs() {
	for _, job := range s.jobs {
		if job.Spec == "" {
			continue
		}

		if _, err := s.cron.AddFunc(job.Spec, func() { s.runJob(job) }); err != nil {
			s.logAndNotifyError(job.Name, NewErrInvalidCronSpec(job.Name, job.Spec, err))
			continue
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"job":  job.Name,
			"spec": job.Spec,
		}).Debug("스케줄 작업 등록")
	}
}

// runJob 작업을 1회 실행합니다.
//
// 작업 컨텍스트는 서비스 종료 신호와 분리되어 있으며, Stop은 진행 중인 작업이 끝날 때까지 기다립니다.
func (s *Scheduler) runJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := safeRun(ctx, job); err != nil {
		s.logAndNotifyError(job.Name, err)
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"job":         job.Name,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("스케줄 작업 완료")
}

// safeRun 작업의 패닉을 에러로 변환합니다.
func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.FromPanic(r, "스케줄 작업 패닉")
		}
	}()

	return job.Run(ctx)
}

func (s *Scheduler) logAndNotifyError(job string, err error) {
	message := fmt.Sprintf("스케줄 작업 실패 (%s): %v", job, err)

	applog.WithComponentAndFields(component, applog.Fields{
		"job":   job,
		"error": err,
	}).Error(message)

	s.relay.Notify(message, nil)
}
