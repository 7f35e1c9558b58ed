package bot

import (
	"context"

	"github.com/darkkaiser/autodelivery-server/internal/blocklist"
	"github.com/darkkaiser/autodelivery-server/internal/event"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
)

func (r *Runtime) logNewOrder(_ context.Context, e event.NewOrderEvent) error {
	applog.WithComponentAndFields(component, applog.Fields{
		"tag":      e.Tag,
		"order_id": e.Order.ID,
		"buyer":    e.Order.BuyerUsername,
		"title":    e.Order.Title,
		"price":    e.Order.Price,
	}).Info("새 주문")
	return nil
}

func (r *Runtime) sendNewOrderNotification(ctx context.Context, e event.NewOrderEvent) error {
	snap := r.configs.Load()
	order := e.Order

	if r.blockList.Blocks(gates(snap), blocklist.GateNewOrderNotification, order.BuyerUsername) {
		return nil
	}
	if !telegramOn(snap, snap.Telegram.NewOrderNotification) {
		return nil
	}

	// 답장 버튼용 채팅 ID. 조회에 실패해도 알림은 보냅니다.
	nodeID, err := r.client.GetNodeIDByUsername(ctx, order.BuyerUsername)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"tag":      e.Tag,
			"order_id": order.ID,
			"buyer":    order.BuyerUsername,
			"error":    err,
		}).Debug("구매자 채팅 ID를 찾지 못했습니다")
		nodeID = 0
	}

	r.relay.Notify(newOrderText(order), newOrderKeyboard(r.account.BaseURL, order, nodeID))
	return nil
}

func (r *Runtime) deliverProduct(ctx context.Context, e event.NewOrderEvent) error {
	snap := r.configs.Load()
	if !snap.Features.AutoDelivery {
		return nil
	}

	blocked := r.blockList.Blocks(gates(snap), blocklist.GateDelivery, e.Order.BuyerUsername)

	outcome := r.workflow.Deliver(event.WithMeta(ctx, e.Meta), snap, e.Order, blocked)
	r.metrics.DeliveryFinished(outcome.Status.String())

	return nil
}

func (r *Runtime) runPreDeliveryHandlers(ctx context.Context, order marketplace.Order, ruleName string) {
	_ = r.Emit(ctx, event.PreDeliveryEvent{
		Meta:     event.MetaFrom(ctx),
		Order:    order,
		RuleName: ruleName,
	})
}

func (r *Runtime) runPostDeliveryHandlers(ctx context.Context, order marketplace.Order, ruleName, text string, errored bool) {
	_ = r.Emit(ctx, event.PostDeliveryEvent{
		Meta:     event.MetaFrom(ctx),
		Order:    order,
		RuleName: ruleName,
		Text:     text,
		Errored:  errored,
	})
}

func (r *Runtime) sendDeliveryBlockedNotification(_ context.Context, order marketplace.Order) {
	snap := r.configs.Load()
	if !telegramOn(snap, snap.Telegram.DeliveryNotification) {
		return
	}
	r.relay.Notify(deliveryBlockedText(order.BuyerUsername), nil)
}

func (r *Runtime) sendDeliveryNotification(_ context.Context, e event.PostDeliveryEvent) error {
	snap := r.configs.Load()
	if !telegramOn(snap, snap.Telegram.DeliveryNotification) {
		return nil
	}
	r.relay.Notify(deliveryText(e.Order.ID, e.Text, e.Errored), nil)
	return nil
}
