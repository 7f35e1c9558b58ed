// Package bot 판매자 계정의 이벤트 핸들러 체인을 구성하고 실행합니다.
package bot

import (
	"context"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/blocklist"
	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/delivery"
	"github.com/darkkaiser/autodelivery-server/internal/deliverytest"
	"github.com/darkkaiser/autodelivery-server/internal/event"
	"github.com/darkkaiser/autodelivery-server/internal/inventory"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	"github.com/darkkaiser/autodelivery-server/internal/metrics"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/darkkaiser/autodelivery-server/internal/reconcile"
	"github.com/darkkaiser/autodelivery-server/internal/service/notification"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
)

const component = "bot"

// Deps Runtime이 사용하는 구성 요소
type Deps struct {
	Configs *config.Store
	Account config.AccountConfig

	Client    marketplace.Client
	Inventory *inventory.Store
	BlockList *blocklist.List
	Keys      *deliverytest.Keys
	Relay     notification.Relay
	Runner    reconcile.Submitter
	Metrics   *metrics.Metrics

	Retry     marketplace.RetryPolicy
	Reconcile reconcile.Policy
}

// Runtime 이벤트 종류별 핸들러 체인과 그 핸들러들이 공유하는 상태
type Runtime struct {
	configs *config.Store
	account config.AccountConfig

	client    marketplace.Client
	inventory *inventory.Store
	blockList *blocklist.List
	keys      *deliverytest.Keys
	relay     notification.Relay
	runner    reconcile.Submitter
	metrics   *metrics.Metrics
	retry     marketplace.RetryPolicy

	lots       *LotCache
	workflow   *delivery.Workflow
	reconciler *reconcile.Reconciler

	newMessage        *event.Chain[event.NewMessageEvent]
	newOrder          *event.Chain[event.NewOrderEvent]
	ordersListChanged *event.Chain[event.OrdersListChangedEvent]
	preDelivery       *event.Chain[event.PreDeliveryEvent]
	postDelivery      *event.Chain[event.PostDeliveryEvent]
	lotsRaised        *event.Chain[event.LotsRaisedEvent]
	postStart         *event.Chain[event.PostStartEvent]

	now func() time.Time
}

// New Runtime을 생성하고 기본 핸들러를 등록합니다.
func New(d Deps) *Runtime {
	relay := d.Relay
	if relay == nil {
		relay = notification.NewNopService()
	}

	r := &Runtime{
		configs:   d.Configs,
		account:   d.Account,
		client:    d.Client,
		inventory: d.Inventory,
		blockList: d.BlockList,
		keys:      d.Keys,
		relay:     relay,
		runner:    d.Runner,
		metrics:   d.Metrics,
		retry:     d.Retry,

		lots: NewLotCache(),

		now: time.Now,
	}

	r.workflow = delivery.NewWorkflow(d.Client, d.Inventory, d.Retry, delivery.Hooks{
		Pre:     r.runPreDeliveryHandlers,
		Post:    r.runPostDeliveryHandlers,
		Blocked: r.sendDeliveryBlockedNotification,
	})
	r.reconciler = reconcile.New(d.Client, d.Account.ID, d.Configs, r.lots, d.Inventory, d.Reconcile, d.Metrics)

	onFailure := func(kind event.Kind, handler string, _ error) {
		r.metrics.HandlerFailed(kind.String(), handler)
	}

	r.newMessage = event.NewChain[event.NewMessageEvent](event.NewMessage, onFailure)
	r.newOrder = event.NewChain[event.NewOrderEvent](event.NewOrder, onFailure)
	r.ordersListChanged = event.NewChain[event.OrdersListChangedEvent](event.OrdersListChanged, onFailure)
	r.preDelivery = event.NewChain[event.PreDeliveryEvent](event.PreDelivery, onFailure)
	r.postDelivery = event.NewChain[event.PostDeliveryEvent](event.PostDelivery, onFailure)
	r.lotsRaised = event.NewChain[event.LotsRaisedEvent](event.LotsRaised, onFailure)
	r.postStart = event.NewChain[event.PostStartEvent](event.PostStart, onFailure)

	r.registerDefaultHandlers()

	return r
}

// registerDefaultHandlers 각 체인에 기본 핸들러를 실행 순서대로 등록합니다.
func (r *Runtime) registerDefaultHandlers() {
	r.newMessage.Register("logMessage", r.logMessage)
	r.newMessage.Register("sendResponse", r.sendResponse)
	r.newMessage.Register("sendNewMessageNotification", r.sendNewMessageNotification)
	r.newMessage.Register("sendCommandNotification", r.sendCommandNotification)
	r.newMessage.Register("testAutoDelivery", r.testAutoDelivery)

	r.newOrder.Register("logNewOrder", r.logNewOrder)
	r.newOrder.Register("sendNewOrderNotification", r.sendNewOrderNotification)
	r.newOrder.Register("deliverProduct", r.deliverProduct)

	r.ordersListChanged.Register("updateLotsState", r.updateLotsState)

	r.lotsRaised.Register("sendCategoriesRaisedNotification", r.sendCategoriesRaisedNotification)

	r.postDelivery.Register("sendDeliveryNotification", r.sendDeliveryNotification)

	r.postStart.Register("refreshLots", r.refreshLotsOnStart)
	r.postStart.Register("sendBotStartedNotification", r.sendBotStartedNotification)
}

// Emit 이벤트를 종류에 맞는 체인으로 디스패치합니다. 모든 핸들러가 끝난 뒤 반환됩니다.
//
// 외부(웹훅)에서 들어온 이벤트와 핸들러 내부에서 만들어진 이벤트 모두 이 경로를 사용합니다.
func (r *Runtime) Emit(ctx context.Context, ev event.Tagged) error {
	switch e := ev.(type) {
	case event.NewMessageEvent:
		dispatch(ctx, r, r.newMessage, e)
	case event.NewOrderEvent:
		dispatch(ctx, r, r.newOrder, e)
	case event.OrdersListChangedEvent:
		dispatch(ctx, r, r.ordersListChanged, e)
	case event.PreDeliveryEvent:
		dispatch(ctx, r, r.preDelivery, e)
	case event.PostDeliveryEvent:
		dispatch(ctx, r, r.postDelivery, e)
	case event.LotsRaisedEvent:
		dispatch(ctx, r, r.lotsRaised, e)
	case event.PostStartEvent:
		dispatch(ctx, r, r.postStart, e)
	default:
		return apperrors.Newf(apperrors.InvalidInput, "지원하지 않는 이벤트 타입입니다: %T", ev)
	}
	return nil
}

func dispatch[E event.Tagged](ctx context.Context, r *Runtime, chain *event.Chain[E], e E) {
	r.metrics.EventDispatched(chain.Kind().String())
	chain.Dispatch(event.WithMeta(ctx, event.Meta{Tag: e.EventTag()}), e)
}

// NewMessageChain 새 메시지 체인. 확장 핸들러 등록에 사용합니다.
func (r *Runtime) NewMessageChain() *event.Chain[event.NewMessageEvent] { return r.newMessage }

// NewOrderChain 새 주문 체인
func (r *Runtime) NewOrderChain() *event.Chain[event.NewOrderEvent] { return r.newOrder }

// OrdersListChangedChain 주문 목록 변경 체인
func (r *Runtime) OrdersListChangedChain() *event.Chain[event.OrdersListChangedEvent] {
	return r.ordersListChanged
}

// PreDeliveryChain 배송 직전 체인
func (r *Runtime) PreDeliveryChain() *event.Chain[event.PreDeliveryEvent] { return r.preDelivery }

// PostDeliveryChain 배송 직후 체인
func (r *Runtime) PostDeliveryChain() *event.Chain[event.PostDeliveryEvent] { return r.postDelivery }

// LotsRaisedChain 카테고리 올리기 체인
func (r *Runtime) LotsRaisedChain() *event.Chain[event.LotsRaisedEvent] { return r.lotsRaised }

// PostStartChain 시작 직후 체인
func (r *Runtime) PostStartChain() *event.Chain[event.PostStartEvent] { return r.postStart }

// Lots 로컬에 알려진 판매자 상품 목록
func (r *Runtime) Lots() *LotCache { return r.lots }

// Reconciler 상품 상태 동기화기
func (r *Runtime) Reconciler() *reconcile.Reconciler { return r.reconciler }

// Keys 시험 배송 키 저장소
func (r *Runtime) Keys() *deliverytest.Keys { return r.keys }

// RefreshLots 원격 프로필의 활성 상품을 로컬 목록에 병합합니다.
func (r *Runtime) RefreshLots(ctx context.Context) error {
	var lots []marketplace.Lot
	err := r.retry.Do(ctx, "list_active_lots", func(ctx context.Context) (err error) {
		lots, err = r.client.ListActiveLots(ctx, r.account.ID)
		return err
	})
	if err != nil {
		return err
	}

	added := r.lots.Merge(lots)

	applog.WithComponentAndFields(component, applog.Fields{
		"active": len(lots),
		"added":  added,
		"known":  r.lots.Len(),
	}).Info("상품 목록을 갱신했습니다")

	return nil
}

// gates 현재 설정 스냅샷의 차단 게이트
func gates(snap *config.Snapshot) blocklist.Gates {
	return blocklist.GatesFromConfig(snap.BlockList)
}

// telegramOn 운영자 채널이 설정되어 있고 해당 알림이 켜져 있는지 확인합니다.
func telegramOn(snap *config.Snapshot, toggle bool) bool {
	return snap.Telegram.Enabled() && toggle
}
