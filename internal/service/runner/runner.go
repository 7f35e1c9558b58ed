// Package runner 이벤트 핸들러에서 분리된 장시간 작업(상품 상태 동기화 등)을 실행하는 백그라운드 러너입니다.
//
// 동시에 실행되는 작업 수는 세마포어로 제한되며, 종료 시 이미 제출된 작업이 모두 끝날 때까지 기다립니다.
// 작업은 제출한 이벤트의 수명과 무관하게 끝까지 실행되므로, 작업에 전달되는 Context는 취소되지 않습니다.
package runner

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/metrics"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"golang.org/x/sync/semaphore"
)

const component = "runner.service"

// ErrRunnerClosed 종료 절차가 시작된 뒤 작업을 제출했을 때 반환됩니다.
var ErrRunnerClosed = apperrors.New(apperrors.Unavailable, "백그라운드 러너가 종료되어 작업을 받을 수 없습니다")

// Task 백그라운드에서 실행되는 작업
type Task func(ctx context.Context)

// Runner 제한된 수의 워커로 작업을 실행합니다.
type Runner struct {
	sem *semaphore.Weighted

	tasks sync.WaitGroup

	metrics *metrics.Metrics

	closed    bool
	running   bool
	runningMu sync.Mutex

	// drainTimeout 종료 시 작업 완료를 기다리는 최대 시간 (0이면 무제한)
	drainTimeout time.Duration
}

// New maxWorkers개의 작업을 동시에 실행할 수 있는 Runner를 생성합니다.
func New(maxWorkers int, m *metrics.Metrics) *Runner {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	return &Runner{
		sem:          semaphore.NewWeighted(int64(maxWorkers)),
		metrics:      m,
		drainTimeout: time.Minute,
	}
}

// Start 러너를 시작합니다. serviceStopCtx가 취소되면 새 작업 접수를 중단하고 진행 중인 작업을 모두 기다립니다.
func (r *Runner) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	r.runningMu.Lock()
	defer r.runningMu.Unlock()

	if r.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Runner 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}
	r.running = true

	applog.WithComponent(component).Info("서비스 시작 완료: Runner 서비스가 작업을 받을 준비가 되었습니다")

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		ctx := context.Background()
		if r.drainTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.drainTimeout)
			defer cancel()
		}

		if err := r.Shutdown(ctx); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"error": err,
			}).Error("Runner 종료 대기 시간 초과: 일부 작업이 아직 실행 중입니다")
		}
	}()

	return nil
}

// Submit 작업을 제출합니다. 호출자는 블로킹되지 않으며, 워커 자리가 날 때까지 작업은 대기합니다.
func (r *Runner) Submit(name string, task Task) error {
	r.runningMu.Lock()
	if r.closed {
		r.runningMu.Unlock()
		return ErrRunnerClosed
	}
	r.tasks.Add(1)
	r.runningMu.Unlock()

	go func() {
		defer r.tasks.Done()

		// 작업은 취소되지 않으므로 Acquire도 취소되지 않는 Context로 기다립니다.
		_ = r.sem.Acquire(context.Background(), 1)
		defer r.sem.Release(1)

		r.metrics.RunnerTaskStarted()
		defer r.metrics.RunnerTaskFinished()

		r.run(name, task)
	}()

	return nil
}

func (r *Runner) run(name string, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"task":  name,
				"panic": rec,
				"stack": string(debug.Stack()),
			}).Error("백그라운드 작업 패닉 복구 (러너 유지됨)")
		}
	}()

	start := time.Now()
	task(context.Background())

	applog.WithComponentAndFields(component, applog.Fields{
		"task":     name,
		"duration": time.Since(start).String(),
	}).Debug("백그라운드 작업 완료")
}

// Shutdown 새 작업 접수를 중단하고, 제출된 작업이 모두 끝나거나 ctx가 만료될 때까지 기다립니다.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.runningMu.Lock()
	r.closed = true
	r.runningMu.Unlock()

	done := make(chan struct{})
	go func() {
		r.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		applog.WithComponent(component).Info("Runner 서비스 종료 완료: 모든 작업이 끝났습니다")
		return nil
	case <-ctx.Done():
		return apperrors.Wrap(ctx.Err(), apperrors.Timeout, "백그라운드 작업 종료 대기 중 시간이 초과되었습니다")
	}
}
