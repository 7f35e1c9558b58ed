package event

import (
	"context"
	"runtime/debug"
	"sync"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/iancoleman/strcase"
)

const component = "event"

// HandlerFunc 이벤트 하나를 처리합니다. 반환된 에러는 로그로만 기록되며 체인을 중단시키지 않습니다.
type HandlerFunc[E any] func(ctx context.Context, e E) error

// Handler 이름이 붙은 핸들러
type Handler[E any] struct {
	Name string
	Fn   HandlerFunc[E]
}

// FailureFunc 핸들러가 에러를 반환하거나 패닉이 발생했을 때 호출됩니다.
type FailureFunc func(kind Kind, handler string, err error)

// Run 핸들러들을 등록 순서대로 실행합니다.
//
// 각 핸들러의 에러와 패닉은 그 자리에서 기록되고 흡수되며, 이후 핸들러의 실행과 호출자에게 영향을 주지 않습니다.
func Run[E any](ctx context.Context, kind Kind, handlers []Handler[E], e E, onFailure FailureFunc) {
	for _, h := range handlers {
		if err := invoke(ctx, h, e); err != nil {
			fields := applog.Fields{
				"kind":    kind.String(),
				"handler": h.Name,
				"error":   err,
			}
			if tagged, ok := any(e).(Tagged); ok {
				fields["tag"] = tagged.EventTag()
			}
			applog.WithComponentAndFields(component, fields).Errorf("이벤트 핸들러 실행 실패: %+v", err)

			if onFailure != nil {
				onFailure(kind, h.Name, err)
			}
		}
	}
}

func invoke[E any](ctx context.Context, h Handler[E], e E) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.FromPanic(r, "이벤트 핸들러 패닉")
			applog.WithComponentAndFields(component, applog.Fields{
				"handler": h.Name,
				"panic":   r,
				"stack":   string(debug.Stack()),
			}).Error("이벤트 핸들러 패닉 복구")
		}
	}()

	return h.Fn(ctx, e)
}

// Chain 한 종류의 이벤트에 대한 순서 있는 핸들러 목록
type Chain[E any] struct {
	kind Kind

	mu       sync.RWMutex
	handlers []Handler[E]

	onFailure FailureFunc
}

// NewChain 새 체인을 생성합니다. onFailure는 nil일 수 있습니다.
func NewChain[E any](kind Kind, onFailure FailureFunc) *Chain[E] {
	return &Chain[E]{kind: kind, onFailure: onFailure}
}

// Kind 체인이 담당하는 이벤트 종류를 반환합니다.
func (c *Chain[E]) Kind() Kind {
	return c.kind
}

// Register 핸들러를 체인 끝에 추가합니다. 이름은 snake_case로 정규화됩니다.
func (c *Chain[E]) Register(name string, fn HandlerFunc[E]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers = append(c.handlers, Handler[E]{Name: strcase.ToSnake(name), Fn: fn})
}

// Names 등록된 핸들러 이름을 순서대로 반환합니다.
func (c *Chain[E]) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.handlers))
	for i, h := range c.handlers {
		names[i] = h.Name
	}
	return names
}

// Dispatch 현재 등록된 핸들러의 스냅샷으로 이벤트를 처리합니다.
//
// 잠금은 스냅샷을 복사하는 동안만 유지되므로, 핸들러 안에서 같은(또는 다른) 체인으로 다시 디스패치할 수 있습니다.
func (c *Chain[E]) Dispatch(ctx context.Context, e E) {
	c.mu.RLock()
	handlers := make([]Handler[E], len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.RUnlock()

	applog.WithComponentAndFields(component, applog.Fields{
		"kind":     c.kind.String(),
		"handlers": len(handlers),
	}).Trace("이벤트 디스패치")

	Run(ctx, c.kind, handlers, e, c.onFailure)
}
