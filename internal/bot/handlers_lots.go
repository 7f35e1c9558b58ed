package bot

import (
	"context"

	"github.com/darkkaiser/autodelivery-server/internal/event"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
)

// updateLotsState 상품 상태 동기화를 백그라운드 러너에 맡기고 바로 반환합니다.
func (r *Runtime) updateLotsState(_ context.Context, e event.OrdersListChangedEvent) error {
	snap := r.configs.Load()
	if !snap.Features.AutoRestore && !snap.Features.AutoDisable {
		return nil
	}

	if err := r.reconciler.RunDetached(r.runner); err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "상품 상태 동기화를 시작할 수 없습니다")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"tag": e.Tag,
	}).Debug("상품 상태 동기화를 백그라운드에서 시작했습니다")

	return nil
}

func (r *Runtime) sendCategoriesRaisedNotification(_ context.Context, e event.LotsRaisedEvent) error {
	snap := r.configs.Load()
	if !telegramOn(snap, snap.Telegram.LotsRaiseNotification) {
		return nil
	}
	r.relay.Notify(lotsRaisedText(e.Raise), nil)
	return nil
}

func (r *Runtime) refreshLotsOnStart(ctx context.Context, _ event.PostStartEvent) error {
	return r.RefreshLots(ctx)
}

func (r *Runtime) sendBotStartedNotification(ctx context.Context, _ event.PostStartEvent) error {
	snap := r.configs.Load()
	if !telegramOn(snap, snap.Telegram.BotStartNotification) {
		return nil
	}

	var account marketplace.Account
	err := r.retry.Do(ctx, "get_account", func(ctx context.Context) (err error) {
		account, err = r.client.GetAccount(ctx)
		return err
	})
	if err != nil {
		return err
	}

	r.relay.Notify(botStartedText(account), nil)
	return nil
}
