// Package event 마켓플레이스 이벤트의 종류와 페이로드, 그리고 이벤트별 핸들러 체인 디스패처를 제공합니다.
package event

import (
	"fmt"

	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	"github.com/rs/xid"
)

// Kind 이벤트 종류
type Kind int

const (
	NewMessage Kind = iota
	NewOrder
	OrdersListChanged
	PreDelivery
	PostDelivery
	LotsRaised
	PostStart
)

var kindNames = [...]string{
	NewMessage:        "new_message",
	NewOrder:          "new_order",
	OrdersListChanged: "orders_list_changed",
	PreDelivery:       "pre_delivery",
	PostDelivery:      "post_delivery",
	LotsRaised:        "lots_raised",
	PostStart:         "post_start",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind 문자열을 Kind로 변환합니다.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Meta 모든 이벤트가 공통으로 가지는 상관관계 태그
type Meta struct {
	Tag string `json:"tag"`
}

// EventTag 로그 상관관계 추적에 사용되는 태그를 반환합니다.
func (m Meta) EventTag() string { return m.Tag }

// NewMeta 새 태그를 발급합니다.
func NewMeta() Meta {
	return Meta{Tag: xid.New().String()}
}

// Tagged 상관관계 태그를 가진 이벤트
type Tagged interface {
	EventTag() string
}

type NewMessageEvent struct {
	Meta
	Message marketplace.Message
}

type NewOrderEvent struct {
	Meta
	Order marketplace.Order
}

type OrdersListChangedEvent struct {
	Meta
}

// PreDeliveryEvent 배송 시도 직전에 발생합니다.
type PreDeliveryEvent struct {
	Meta
	Order    marketplace.Order
	RuleName string
}

// PostDeliveryEvent 배송 시도가 끝난 뒤(성공/실패 무관) 정확히 한 번 발생합니다.
type PostDeliveryEvent struct {
	Meta
	Order    marketplace.Order
	RuleName string

	// Text 성공 시 구매자에게 전송된 텍스트, 실패 시 에러 설명
	Text    string
	Errored bool
}

type LotsRaisedEvent struct {
	Meta
	Raise marketplace.RaiseResponse
}

type PostStartEvent struct {
	Meta
}
