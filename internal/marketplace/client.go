package marketplace

import (
	"context"
)

// Client 마켓플레이스 원격 호출 인터페이스입니다.
//
// 구현체는 재시도를 수행하지 않습니다. 재시도 횟수와 간격은 호출하는 쪽의 정책(RetryPolicy)이 결정합니다.
type Client interface {
	// SendMessage 채팅(nodeID)에 메시지를 전송합니다.
	SendMessage(ctx context.Context, nodeID int64, text string) error

	// GetNodeIDByUsername 사용자명으로 채팅 ID를 조회합니다.
	GetNodeIDByUsername(ctx context.Context, username string) (int64, error)

	// ListActiveLots 사용자의 공개 프로필에 노출 중인(활성) 상품 목록을 조회합니다.
	ListActiveLots(ctx context.Context, userID int64) ([]Lot, error)

	// GetLotInfo 상품 편집 양식을 조회합니다.
	GetLotInfo(ctx context.Context, lotID, gameID int64) (LotInfo, error)

	// SaveLot 상품 편집 양식을 저장합니다. active에 따라 상품이 활성화/비활성화됩니다.
	SaveLot(ctx context.Context, info LotInfo, active bool) error

	// GetAccount 판매자 계정 요약 정보를 조회합니다.
	GetAccount(ctx context.Context) (Account, error)
}
