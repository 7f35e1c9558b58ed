// Package handler 운영 API v1의 요청 핸들러를 제공합니다.
package handler

import (
	"context"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/event"
	"github.com/darkkaiser/autodelivery-server/internal/inventory"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/constants"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// Emitter 이벤트를 핸들러 체인으로 디스패치합니다.
type Emitter interface {
	Emit(ctx context.Context, ev event.Tagged) error
}

// KeyIssuer 시험 배송 키를 발급합니다.
type KeyIssuer interface {
	Issue(lotName string) (string, error)
}

// Inventory 상품 파일 관리
type Inventory interface {
	List() ([]inventory.FileInfo, error)
	Create(name string) (string, error)
	Count(name string) (int, error)
	Add(name string, units []string) (int, error)
	Delete(name string) error
}

// LotSource 로컬에 알려진 판매자 상품 목록
type LotSource interface {
	KnownLots() []marketplace.Lot
	RefreshedAt() time.Time
}

// BlockList 차단 목록 관리
type BlockList interface {
	Users() []string
	Add(username string) bool
	Remove(username string) bool
	Save() error
}

// Deps Handler가 사용하는 구성 요소
type Deps struct {
	Emitter   Emitter
	Configs   *config.Store
	Keys      KeyIssuer
	Inventory Inventory
	BlockList BlockList
	Lots      LotSource
}

// Handler v1 핸들러
type Handler struct {
	emitter   Emitter
	configs   *config.Store
	keys      KeyIssuer
	inventory Inventory
	blockList BlockList
	lots      LotSource
}

func NewHandler(d Deps) *Handler {
	if d.Emitter == nil || d.Configs == nil || d.Keys == nil || d.Inventory == nil || d.BlockList == nil || d.Lots == nil {
		panic("v1 handler: 모든 의존성은 필수입니다")
	}

	return &Handler{
		emitter:   d.Emitter,
		configs:   d.Configs,
		keys:      d.Keys,
		inventory: d.Inventory,
		blockList: d.BlockList,
		lots:      d.Lots,
	}
}

// bindAndValidate 요청 본문을 req에 바인딩한 뒤 검증합니다.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return NewErrInvalidBody()
	}
	if err := ValidateRequest(req); err != nil {
		return NewErrValidationFailed(FormatValidationError(err))
	}
	return nil
}

func (h *Handler) log(c echo.Context) *applog.Entry {
	return applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"endpoint":   c.Path(),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	})
}
