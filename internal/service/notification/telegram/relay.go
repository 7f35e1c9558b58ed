package telegram

import (
	"context"
	"sync"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/darkkaiser/autodelivery-server/internal/service/notification"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
)

// Notify 알림을 발송 대기열에 넣고 즉시 반환합니다.
//
// 종료되었거나 대기열이 가득 찬 경우 알림은 버려지고 로그만 남습니다.
func (r *Relay) Notify(text string, keyboard *notification.Keyboard) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		applog.WithComponent(component).Debug("종료된 상태여서 알림을 버립니다")
		return
	}

	select {
	case r.queue <- request{text: text, keyboard: keyboard}:
	default:
		r.metrics.NotificationSent(false)
		applog.WithComponentAndFields(component, applog.Fields{
			"chat_id":     r.chatID,
			"queue_depth": len(r.queue),
		}).Warn("발송 대기열이 가득 차서 알림을 버립니다")
	}
}

// Start 발송 워커를 시작합니다. serviceStopCtx가 취소되면 대기열을 비운 뒤 serviceStopWG.Done()을 호출합니다.
func (r *Relay) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	r.runningMu.Lock()
	defer r.runningMu.Unlock()

	applog.WithComponent(component).Info("텔레그램 알림 서비스 시작중...")

	if r.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("텔레그램 알림 서비스가 이미 시작됨!!!")
		return nil
	}

	r.running = true

	go func() {
		defer serviceStopWG.Done()

		r.sendNotifications(serviceStopCtx)

		r.runningMu.Lock()
		r.running = false
		r.runningMu.Unlock()

		applog.WithComponent(component).Info("텔레그램 알림 서비스 중지됨")
	}()

	applog.WithComponent(component).Info("텔레그램 알림 서비스 시작됨")

	return nil
}

// Health 발송 워커가 실행 중이 아니면 에러를 반환합니다.
func (r *Relay) Health() error {
	r.runningMu.Lock()
	defer r.runningMu.Unlock()

	if !r.running {
		return apperrors.New(apperrors.Unavailable, "텔레그램 알림 서비스가 실행 중이 아닙니다")
	}
	return nil
}

// close 이후의 Notify 호출이 대기열에 접근하지 못하도록 합니다.
func (r *Relay) close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
}
