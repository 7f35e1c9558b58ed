package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/service/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingRelay struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordingRelay) Notify(text string, _ *notification.Keyboard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func (r *recordingRelay) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

func startScheduler(t *testing.T, s *Scheduler) (context.CancelFunc, *sync.WaitGroup) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, s.Start(ctx, wg))

	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	return cancel, wg
}

// =============================================================================
// Constructor
// =============================================================================

func TestNewService_NilRelayPanics(t *testing.T) {
	assert.PanicsWithValue(t, "Relay는 필수입니다", func() {
		NewService(nil, nil)
	})
}

// =============================================================================
// Registration
// =============================================================================

func TestScheduler_RegisterJobs(t *testing.T) {
	relay := &recordingRelay{}
	noop := func(context.Context) error { return nil }

	s := NewService([]Job{
		{Name: "lots_refresh", Spec: "0 */30 * * * *", Run: noop},
		{Name: "reconcile", Spec: "", Run: noop},
		{Name: "broken", Spec: "*/5 * * * *", Run: noop},
	}, relay)

	startScheduler(t, s)

	s.runningMu.Lock()
	entries := len(s.cron.Entries())
	s.runningMu.Unlock()

	assert.Equal(t, 1, entries, "빈 스케줄과 잘못된 스케줄은 등록되지 않아야 합니다")

	texts := relay.Texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "broken")
	assert.Contains(t, texts[0], "잘못된 Cron 표현식")
}

// =============================================================================
// Execution
// =============================================================================

func TestScheduler_RunsJobAndReportsFailure(t *testing.T) {
	relay := &recordingRelay{}
	var okRuns, failRuns atomic.Int32

	s := NewService([]Job{
		{Name: "ok", Spec: "* * * * * *", Run: func(context.Context) error {
			okRuns.Add(1)
			return nil
		}},
		{Name: "fail", Spec: "* * * * * *", Run: func(context.Context) error {
			failRuns.Add(1)
			return errors.New("원격 서버 응답 없음")
		}},
	}, relay)

	startScheduler(t, s)

	assert.Eventually(t, func() bool {
		return okRuns.Load() > 0 && failRuns.Load() > 0 && len(relay.Texts()) > 0
	}, 5*time.Second, 50*time.Millisecond)

	assert.Contains(t, relay.Texts()[0], "스케줄 작업 실패 (fail)")
	assert.Contains(t, relay.Texts()[0], "원격 서버 응답 없음")
}

func TestScheduler_RecoversPanickingJob(t *testing.T) {
	relay := &recordingRelay{}
	var runs atomic.Int32

	s := NewService([]Job{
		{Name: "panic", Spec: "* * * * * *", Run: func(context.Context) error {
			runs.Add(1)
			panic("boom")
		}},
	}, relay)

	startScheduler(t, s)

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 50*time.Millisecond,
		"패닉 이후에도 다음 스케줄이 실행되어야 합니다")

	texts := relay.Texts()
	require.NotEmpty(t, texts)
	assert.Contains(t, texts[0], "스케줄 작업 실패 (panic)")
	assert.Contains(t, texts[0], "boom")
}

func TestScheduler_PanicReleasesSkipToken(t *testing.T) {
	// 실행 중 건너뛰기와 패닉 복구를 함께 사용해도 패닉 이후 실행이 계속 건너뛰어지면 안 됩니다.
	relay := &recordingRelay{}
	var runs atomic.Int32

	s := NewService([]Job{
		{Name: "flaky", Spec: "* * * * * *", Run: func(context.Context) error {
			if runs.Add(1) == 1 {
				panic(errors.New("first run failed"))
			}
			return nil
		}},
	}, relay)

	startScheduler(t, s)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 6*time.Second, 50*time.Millisecond)
	assert.Len(t, relay.Texts(), 1)
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestScheduler_StopOnCancel(t *testing.T) {
	s := NewService(nil, &recordingRelay{})

	cancel, wg := startScheduler(t, s)

	// 중복 시작은 즉시 Done을 호출합니다.
	wg.Add(1)
	require.NoError(t, s.Start(context.Background(), wg))

	cancel()
	wg.Wait()

	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	assert.False(t, s.running)
	assert.Nil(t, s.cron)
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s := NewService(nil, &recordingRelay{})

	assert.NotPanics(t, s.Stop)
}
