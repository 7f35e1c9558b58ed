package marketplace

import (
	"context"
	"time"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
)

const component = "marketplace"

// RetryPolicy 원격 호출 실패 시 고정 간격 재시도 정책입니다.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration

	// Sleep 테스트에서 대기를 대체하기 위한 함수입니다. nil이면 ctx를 존중하는 타이머 대기를 사용합니다.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Do op를 최대 MaxAttempts회 실행합니다. 모든 시도가 실패하면 마지막 에러를 감싸서 반환합니다.
func (p RetryPolicy) Do(ctx context.Context, opName string, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = op(ctx); lastErr == nil {
			return nil
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"operation":    opName,
			"attempt":      attempt,
			"max_attempts": attempts,
			"error":        lastErr,
		}).Warn("원격 호출 실패")

		if attempt == attempts {
			break
		}
		if err := p.sleep(ctx, p.Delay); err != nil {
			return apperrors.Wrap(err, apperrors.Timeout, opName+": 재시도 대기 중 취소되었습니다")
		}
	}

	return apperrors.Wrapf(lastErr, apperrors.ExecutionFailed, "%s: 최대 시도 횟수(%d)를 초과했습니다", opName, attempts)
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

// SleepContext d만큼 대기합니다. 대기 중 ctx가 취소되면 즉시 ctx.Err()를 반환합니다.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
