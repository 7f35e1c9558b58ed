package bot

import (
	"context"
	"strings"

	"github.com/darkkaiser/autodelivery-server/internal/blocklist"
	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/delivery"
	"github.com/darkkaiser/autodelivery-server/internal/deliverytest"
	"github.com/darkkaiser/autodelivery-server/internal/event"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
)

// DeliveryTestOrderID 시험 배송으로 만들어지는 가상 주문의 ID
const DeliveryTestOrderID = "#DELIVERY_TEST"

// deliveryTestPrice 시험 배송 가상 주문의 가격
const deliveryTestPrice = 999999.0

func (r *Runtime) logMessage(_ context.Context, e event.NewMessageEvent) error {
	applog.WithComponentAndFields(component, applog.Fields{
		"tag":       e.Tag,
		"chat_with": e.Message.ChatWith,
		"node_id":   e.Message.NodeID,
		"text":      e.Message.Text,
	}).Info("새 메시지")
	return nil
}

// sendResponse 자동 응답 명령어에 설정된 응답을 보냅니다.
func (r *Runtime) sendResponse(ctx context.Context, e event.NewMessageEvent) error {
	snap := r.configs.Load()
	msg := e.Message

	if r.blockList.Blocks(gates(snap), blocklist.GateResponse, msg.ChatWith) {
		return nil
	}
	if !snap.Features.AutoResponse {
		return nil
	}

	ar, ok := snap.FindAutoResponse(msg.Text)
	if !ok {
		return nil
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"tag":       e.Tag,
		"command":   ar.Command,
		"chat_with": msg.ChatWith,
		"node_id":   msg.NodeID,
	}).Info("자동 응답 명령어 수신")

	text := delivery.RenderMessage(ar.Response, msg, r.now())
	err := r.retry.Do(ctx, "send_message", func(ctx context.Context) error {
		return r.client.SendMessage(ctx, msg.NodeID, text)
	})
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ExecutionFailed, "%s 사용자에게 명령어 응답을 보내지 못했습니다", msg.ChatWith)
	}
	return nil
}

func (r *Runtime) sendNewMessageNotification(_ context.Context, e event.NewMessageEvent) error {
	snap := r.configs.Load()
	msg := e.Message

	switch {
	case !telegramOn(snap, snap.Telegram.NewMessageNotification):
		return nil
	case !msg.Unread:
		return nil
	case r.blockList.Blocks(gates(snap), blocklist.GateNewMessageNotification, msg.ChatWith):
		return nil
	case isAutoResponseCommand(snap, msg.Text):
		return nil
	case deliverytest.IsCommand(msg.Text):
		return nil
	case isSystemMessage(msg.Text):
		return nil
	}

	r.relay.Notify(newMessageText(r.account.BaseURL, msg), replyKeyboard(msg.NodeID))
	return nil
}

func (r *Runtime) sendCommandNotification(_ context.Context, e event.NewMessageEvent) error {
	snap := r.configs.Load()
	msg := e.Message

	if r.blockList.Blocks(gates(snap), blocklist.GateCommandNotification, msg.ChatWith) {
		return nil
	}
	if !telegramOn(snap, snap.Telegram.CommandNotification) {
		return nil
	}

	ar, ok := snap.FindAutoResponse(msg.Text)
	if !ok || !ar.TelegramNotification {
		return nil
	}

	var text string
	if ar.NotificationText == "" {
		text = commandDefaultText(msg.ChatWith, strings.ToLower(strings.TrimSpace(msg.Text)))
	} else {
		text = delivery.RenderMessage(ar.NotificationText, msg, r.now())
	}

	r.relay.Notify(text, nil)
	return nil
}

// testAutoDelivery "!автовыдача <키>" 명령어로 키에 연결된 상품의 가상 주문을 새 주문 체인에 넣습니다.
func (r *Runtime) testAutoDelivery(ctx context.Context, e event.NewMessageEvent) error {
	msg := e.Message
	if !deliverytest.IsCommand(msg.Text) {
		return nil
	}

	logger := applog.WithComponentAndFields(component, applog.Fields{
		"tag":       e.Tag,
		"chat_with": msg.ChatWith,
	})

	key, ok := deliverytest.ParseCommand(msg.Text)
	if !ok {
		logger.Warn("시험 배송 키가 없습니다")
		return nil
	}

	lotName, ok := r.keys.Consume(key)
	if !ok {
		logger.Warn("유효하지 않은 시험 배송 키입니다")
		return nil
	}

	logger.WithField("lot", lotName).Info("시험 배송 키를 사용했습니다")

	return r.Emit(ctx, event.NewOrderEvent{
		Meta: e.Meta,
		Order: marketplace.Order{
			ID:            DeliveryTestOrderID,
			Title:         lotName,
			Price:         deliveryTestPrice,
			BuyerUsername: msg.ChatWith,
			BuyerID:       0,
			Status:        marketplace.OrderOutstanding,
		},
	})
}

func isAutoResponseCommand(snap *config.Snapshot, text string) bool {
	_, ok := snap.FindAutoResponse(text)
	return ok
}
