// Package delivery 주문에 대한 자동 배송 흐름(규칙 확인, 재고 출고, 전송, 실패 시 재고 반환)을 구현합니다.
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
)

const component = "delivery"

// SendFailedText 재시도 후에도 전송에 실패했을 때 후처리 훅으로 전달되는 텍스트입니다.
const SendFailedText = "Превышено кол-во попыток."

// NotStockTracked 상품 파일이 없는 규칙의 남은 재고 값입니다.
const NotStockTracked = -1

// Status 배송 결과 상태
type Status int

const (
	Delivered Status = iota
	Failed
	SkippedNoRule
	SkippedDisabled
	SkippedBlocked
)

func (s Status) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Failed:
		return "failed"
	case SkippedNoRule:
		return "skipped_no_rule"
	case SkippedDisabled:
		return "skipped_disabled"
	case SkippedBlocked:
		return "skipped_blocked"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Skipped 훅이 실행되지 않은 결과인지 여부를 반환합니다.
func (s Status) Skipped() bool {
	return s >= SkippedNoRule
}

// Outcome 배송 한 건의 결과
type Outcome struct {
	Status   Status
	RuleName string

	// Text 성공 시 전송된 텍스트, 실패 시 에러 설명
	Text string

	// Remaining 출고 후 남은 재고. 상품 파일이 없는 규칙은 NotStockTracked(-1)입니다.
	Remaining int

	Err error
}

// Sender 구매자에게 메시지를 전송하는 데 필요한 원격 호출
type Sender interface {
	SendMessage(ctx context.Context, nodeID int64, text string) error
	GetNodeIDByUsername(ctx context.Context, username string) (int64, error)
}

// Stock 상품 파일 재고 연산
type Stock interface {
	Take(name string) (string, error)
	Return(name, unit string) error
	Count(name string) (int, error)
}

// Hooks 배송 흐름의 확장 지점. nil인 훅은 건너뜁니다.
type Hooks struct {
	// Pre 배송 시도 직전에 호출됩니다.
	Pre func(ctx context.Context, order marketplace.Order, ruleName string)

	// Post 배송 시도 후 성공/실패와 무관하게 정확히 한 번 호출됩니다.
	Post func(ctx context.Context, order marketplace.Order, ruleName, text string, errored bool)

	// Blocked 차단된 구매자의 주문이 건너뛰어졌을 때 호출됩니다.
	Blocked func(ctx context.Context, order marketplace.Order)
}

// Workflow 주문 단위 배송 흐름
type Workflow struct {
	sender Sender
	stock  Stock
	retry  marketplace.RetryPolicy
	hooks  Hooks

	now func() time.Time
}

// NewWorkflow 새 Workflow를 생성합니다.
func NewWorkflow(sender Sender, stock Stock, retry marketplace.RetryPolicy, hooks Hooks) *Workflow {
	return &Workflow{
		sender: sender,
		stock:  stock,
		retry:  retry,
		hooks:  hooks,
		now:    time.Now,
	}
}

// ResolveRule 주문 제목에 이름이 포함된 첫 번째 규칙을 찾습니다. (설정 파일 순서)
func ResolveRule(snap *config.Snapshot, title string) (config.DeliveryRule, bool) {
	return snap.FindRule(title)
}

// Deliver 주문 하나를 처리합니다.
//
// buyerBlocked는 구매자가 차단 목록에 있고 배송 차단 게이트가 켜져 있을 때 true입니다.
// 건너뛴 경우를 제외하면 Pre 훅과 Post 훅이 각각 정확히 한 번 실행됩니다.
func (w *Workflow) Deliver(ctx context.Context, snap *config.Snapshot, order marketplace.Order, buyerBlocked bool) Outcome {
	logger := applog.WithComponentAndFields(component, applog.Fields{
		"order_id": order.ID,
		"buyer":    order.BuyerUsername,
	})

	rule, ok := ResolveRule(snap, order.Title)
	if !ok {
		logger.WithField("title", order.Title).Info("배송 규칙에 해당하는 상품이 아닙니다")
		return Outcome{Status: SkippedNoRule, Remaining: NotStockTracked}
	}

	logger = logger.WithField("rule", rule.Name)

	if rule.Disable {
		logger.Info("이 상품은 자동 배송이 비활성화되어 있습니다")
		return Outcome{Status: SkippedDisabled, RuleName: rule.Name, Remaining: NotStockTracked}
	}

	if buyerBlocked {
		logger.Info("차단된 구매자이며 배송 차단이 켜져 있어 배송하지 않습니다")
		if w.hooks.Blocked != nil {
			w.hooks.Blocked(ctx, order)
		}
		return Outcome{Status: SkippedBlocked, RuleName: rule.Name, Remaining: NotStockTracked}
	}

	if w.hooks.Pre != nil {
		w.hooks.Pre(ctx, order, rule.Name)
	}

	outcome := w.attempt(ctx, order, rule)

	switch {
	case outcome.Status == Delivered:
		logger.WithField("remaining", outcome.Remaining).Info("상품 배송 완료")
	case apperrors.Is(outcome.Err, apperrors.OutOfStock):
		logger.Warn("재고가 없어 배송하지 못했습니다")
	default:
		logger.WithField("error", outcome.Err).Errorf("상품 배송 실패: %+v", outcome.Err)
	}

	if w.hooks.Post != nil {
		w.hooks.Post(ctx, order, rule.Name, outcome.Text, outcome.Status == Failed)
	}

	return outcome
}

// attempt 재고 출고와 전송을 수행합니다. 패닉은 Failed 결과로 변환되며, 이미 꺼낸 재고는 반환됩니다.
func (w *Workflow) attempt(ctx context.Context, order marketplace.Order, rule config.DeliveryRule) (outcome Outcome) {
	outcome = Outcome{RuleName: rule.Name, Remaining: NotStockTracked}

	var (
		unit  string
		taken bool
	)

	defer func() {
		if r := recover(); r != nil {
			if taken {
				w.returnUnit(order, rule, unit)
			}
			err := apperrors.FromPanic(r, "배송 처리 중 패닉")
			outcome = Outcome{Status: Failed, RuleName: rule.Name, Text: err.Error(), Remaining: NotStockTracked, Err: err}
		}
	}()

	fail := func(err error, text string) Outcome {
		outcome.Status = Failed
		outcome.Err = err
		outcome.Text = text
		return outcome
	}

	var nodeID int64
	err := w.retry.Do(ctx, "get_node_id_by_username", func(ctx context.Context) (err error) {
		nodeID, err = w.sender.GetNodeIDByUsername(ctx, order.BuyerUsername)
		return err
	})
	if err != nil {
		return fail(err, err.Error())
	}

	text := Render(rule.Response, order, w.now())

	if rule.HasProductsFile() {
		if unit, err = w.stock.Take(rule.ProductsFile); err != nil {
			return fail(err, err.Error())
		}
		taken = true
		text = substituteProduct(text, unit)
	}

	err = w.retry.Do(ctx, "send_message", func(ctx context.Context) error {
		return w.sender.SendMessage(ctx, nodeID, text)
	})
	if err != nil {
		if taken {
			taken = false
			w.returnUnit(order, rule, unit)
		}
		return fail(err, SendFailedText)
	}
	taken = false

	outcome.Status = Delivered
	outcome.Text = text

	if rule.HasProductsFile() {
		if remaining, err := w.stock.Count(rule.ProductsFile); err == nil {
			outcome.Remaining = remaining
		}
	}

	return outcome
}

func (w *Workflow) returnUnit(order marketplace.Order, rule config.DeliveryRule, unit string) {
	if err := w.stock.Return(rule.ProductsFile, unit); err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"order_id": order.ID,
			"file":     rule.ProductsFile,
			"error":    err,
		}).Error("배송 실패 후 재고 반환에 실패했습니다. 상품 파일을 직접 확인하세요")
	}
}
