// Package marketplace 판매자 계정이 다루는 마켓플레이스 도메인 타입과 원격 클라이언트 인터페이스를 정의합니다.
package marketplace

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus 주문 상태
type OrderStatus int

const (
	// OrderOutstanding 결제 완료, 판매자의 처리를 기다리는 상태
	OrderOutstanding OrderStatus = iota

	// OrderCompleted 구매자가 주문 완료를 확인한 상태
	OrderCompleted

	// OrderRefunded 환불된 상태
	OrderRefunded
)

func (s OrderStatus) String() string {
	switch s {
	case OrderOutstanding:
		return "outstanding"
	case OrderCompleted:
		return "completed"
	case OrderRefunded:
		return "refunded"
	default:
		return fmt.Sprintf("OrderStatus(%d)", int(s))
	}
}

// Order 주문
type Order struct {
	// ID 원격에서 부여한 주문 ID (예: "#ABCD1234")
	ID string `json:"id"`

	Title         string      `json:"title"`
	Price         float64     `json:"price"`
	BuyerUsername string      `json:"buyer_username"`
	BuyerID       int64       `json:"buyer_id"`
	Status        OrderStatus `json:"status"`
}

// ShortID 앞의 '#'을 제거한 주문 ID를 반환합니다. (주문 페이지 URL, 환불 요청 식별자에 사용)
func (o Order) ShortID() string {
	return strings.TrimPrefix(o.ID, "#")
}

// Message 채팅 메시지
type Message struct {
	Text string `json:"text"`

	// NodeID 메시지가 속한 채팅(대화방) ID
	NodeID int64 `json:"node_id"`

	// ChatWith 대화 상대방의 사용자명
	ChatWith string `json:"chat_with"`

	Unread bool `json:"unread"`
}

// Lot 판매 상품(목록)
type Lot struct {
	ID     int64   `json:"id"`
	GameID int64   `json:"game_id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
}

// LotInfo 상품 편집 양식의 현재 값입니다. 활성 상태를 바꿔 저장할 때 나머지 필드는 그대로 전달됩니다.
type LotInfo struct {
	LotID  int64
	GameID int64
	Fields map[string]string
	Active bool
}

// RaiseResponse 카테고리 올리기(raise) 결과
type RaiseResponse struct {
	GameID              int64         `json:"game_id"`
	RaisedCategoryNames []string      `json:"raised_category_names"`
	Response            string        `json:"response"`
	Wait                time.Duration `json:"wait"`
}

// Account 판매자 계정 요약 정보
type Account struct {
	ID           int64
	Username     string
	Balance      float64
	Currency     string
	ActiveOrders int
}
