// Package request 운영 API v1의 요청 본문 모델을 정의합니다.
package request

import (
	"strings"

	"github.com/darkkaiser/autodelivery-server/internal/event"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
)

// EventRequest 마켓플레이스 클라이언트 프로세스가 전달하는 이벤트
//
// kind에 따라 message, order, raise 중 하나가 필요합니다. tag를 생략하면 서버가 새로 발급합니다.
type EventRequest struct {
	Kind string `json:"kind" validate:"required,oneof=new_message new_order orders_list_changed lots_raised" korean:"이벤트 종류"`
	Tag  string `json:"tag" validate:"omitempty,max=64" korean:"태그"`

	Message *marketplace.Message       `json:"message" validate:"required_if=Kind new_message" korean:"메시지"`
	Order   *marketplace.Order         `json:"order" validate:"required_if=Kind new_order" korean:"주문"`
	Raise   *marketplace.RaiseResponse `json:"raise" validate:"required_if=Kind lots_raised" korean:"올리기 결과"`
}

// ToEvent 요청을 디스패치 가능한 이벤트로 변환합니다.
func (r *EventRequest) ToEvent() (event.Tagged, error) {
	kind, ok := event.ParseKind(r.Kind)
	if !ok {
		return nil, apperrors.Newf(apperrors.InvalidInput, "알 수 없는 이벤트 종류입니다: '%s'", r.Kind)
	}

	meta := event.NewMeta()
	if tag := strings.TrimSpace(r.Tag); tag != "" {
		meta.Tag = tag
	}

	switch kind {
	case event.NewMessage:
		if r.Message == nil {
			return nil, apperrors.New(apperrors.InvalidInput, "new_message 이벤트에는 message가 필요합니다")
		}
		return event.NewMessageEvent{Meta: meta, Message: *r.Message}, nil

	case event.NewOrder:
		if r.Order == nil || r.Order.ID == "" {
			return nil, apperrors.New(apperrors.InvalidInput, "new_order 이벤트에는 주문 ID가 있는 order가 필요합니다")
		}
		return event.NewOrderEvent{Meta: meta, Order: *r.Order}, nil

	case event.OrdersListChanged:
		return event.OrdersListChangedEvent{Meta: meta}, nil

	case event.LotsRaised:
		if r.Raise == nil {
			return nil, apperrors.New(apperrors.InvalidInput, "lots_raised 이벤트에는 raise가 필요합니다")
		}
		return event.LotsRaisedEvent{Meta: meta, Raise: *r.Raise}, nil
	}

	// pre/post_delivery와 post_start는 서버 내부에서만 발생합니다.
	return nil, apperrors.Newf(apperrors.InvalidInput, "외부에서 보낼 수 없는 이벤트 종류입니다: '%s'", r.Kind)
}
