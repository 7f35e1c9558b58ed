package telegram

import (
	"context"
	"runtime/debug"

	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
)

// sendNotifications 대기열의 알림을 하나씩 전송하는 워커 루프입니다.
func (r *Relay) sendNotifications(serviceStopCtx context.Context) {
	for {
		select {
		case req := <-r.queue:
			r.safeSend(serviceStopCtx, req)

		case <-serviceStopCtx.Done():
			r.close()
			r.drainRemainingNotifications()
			return
		}
	}
}

// drainRemainingNotifications 종료 시 대기열에 남은 알림을 제한 시간 안에서 전송합니다.
func (r *Relay) drainRemainingNotifications() {
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for {
		select {
		case req := <-r.queue:
			if drainCtx.Err() != nil {
				applog.WithComponentAndFields(component, applog.Fields{
					"chat_id":             r.chatID,
					"remaining_in_buffer": len(r.queue) + 1,
				}).Warn("잔여 메시지 폐기: 종료 대기 시간 초과")
				return
			}
			r.safeSend(drainCtx, req)

		default:
			return
		}
	}
}

func (r *Relay) safeSend(ctx context.Context, req request) {
	defer func() {
		if p := recover(); p != nil {
			r.metrics.NotificationSent(false)
			applog.WithComponentAndFields(component, applog.Fields{
				"chat_id": r.chatID,
				"panic":   p,
				"stack":   string(debug.Stack()),
			}).Error("메시지 처리 실패: 발송 중 패닉 발생 (해당 건 스킵)")
		}
	}()

	err := r.sendMessage(ctx, req.text, buildKeyboard(req.keyboard))
	r.metrics.NotificationSent(err == nil)
}
