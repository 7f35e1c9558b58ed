package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failure struct {
	kind    Kind
	handler string
	err     error
}

type failureRecorder struct {
	mu       sync.Mutex
	failures []failure
}

func (r *failureRecorder) record(kind Kind, handler string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, failure{kind, handler, err})
}

// =============================================================================
// Run
// =============================================================================

func TestRun_InvokesHandlersInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	handlers := []Handler[int]{
		{Name: "a", Fn: func(context.Context, int) error { order = append(order, "a"); return nil }},
		{Name: "b", Fn: func(context.Context, int) error { order = append(order, "b"); return nil }},
		{Name: "c", Fn: func(context.Context, int) error { order = append(order, "c"); return nil }},
	}

	Run(context.Background(), NewMessage, handlers, 1, nil)

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRun_IsolatesErrorsAndPanics(t *testing.T) {
	t.Parallel()

	rec := &failureRecorder{}
	errBoom := errors.New("boom")
	calls := 0

	handlers := []Handler[NewOrderEvent]{
		{Name: "first", Fn: func(context.Context, NewOrderEvent) error { calls++; return errBoom }},
		{Name: "second", Fn: func(context.Context, NewOrderEvent) error { calls++; panic("nil map") }},
		{Name: "third", Fn: func(context.Context, NewOrderEvent) error { calls++; return nil }},
	}

	ev := NewOrderEvent{Meta: NewMeta(), Order: marketplace.Order{ID: "#A"}}

	assert.NotPanics(t, func() {
		Run(context.Background(), NewOrder, handlers, ev, rec.record)
	})

	assert.Equal(t, 3, calls, "실패한 핸들러 이후의 핸들러도 실행되어야 합니다")
	require.Len(t, rec.failures, 2)

	assert.Equal(t, "first", rec.failures[0].handler)
	assert.ErrorIs(t, rec.failures[0].err, errBoom)

	assert.Equal(t, "second", rec.failures[1].handler)
	assert.Equal(t, NewOrder, rec.failures[1].kind)
	assert.True(t, apperrors.Is(rec.failures[1].err, apperrors.Internal))
	assert.Contains(t, rec.failures[1].err.Error(), "nil map")
}

// =============================================================================
// Chain
// =============================================================================

func TestChain_RegisterNormalizesNames(t *testing.T) {
	t.Parallel()

	c := NewChain[NewMessageEvent](NewMessage, nil)
	c.Register("LogMessage", func(context.Context, NewMessageEvent) error { return nil })
	c.Register("sendNewMessageNotification", func(context.Context, NewMessageEvent) error { return nil })

	assert.Equal(t, []string{"log_message", "send_new_message_notification"}, c.Names())
	assert.Equal(t, NewMessage, c.Kind())
}

func TestChain_ReentrantDispatch(t *testing.T) {
	t.Parallel()

	orders := NewChain[NewOrderEvent](NewOrder, nil)
	messages := NewChain[NewMessageEvent](NewMessage, nil)

	var got []string
	orders.Register("record", func(_ context.Context, e NewOrderEvent) error {
		got = append(got, e.Order.ID)
		return nil
	})

	messages.Register("redispatch", func(ctx context.Context, e NewMessageEvent) error {
		// 핸들러 안에서 다른 체인으로 디스패치
		orders.Dispatch(ctx, NewOrderEvent{Meta: e.Meta, Order: marketplace.Order{ID: "#DELIVERY_TEST"}})
		return nil
	})
	messages.Register("after", func(context.Context, NewMessageEvent) error {
		got = append(got, "after")
		return nil
	})

	messages.Dispatch(context.Background(), NewMessageEvent{Meta: NewMeta()})

	assert.Equal(t, []string{"#DELIVERY_TEST", "after"}, got)
}

func TestChain_RegisterDuringDispatchDoesNotDeadlock(t *testing.T) {
	t.Parallel()

	c := NewChain[int](PostStart, nil)
	calls := 0
	c.Register("self_register", func(context.Context, int) error {
		calls++
		c.Register("late", func(context.Context, int) error { calls += 10; return nil })
		return nil
	})

	c.Dispatch(context.Background(), 0)
	assert.Equal(t, 1, calls, "디스패치 도중 추가된 핸들러는 현재 실행에 포함되지 않습니다")

	c.Dispatch(context.Background(), 0)
	assert.Equal(t, 12, calls)
}

func TestKind_StringAndParse(t *testing.T) {
	t.Parallel()

	for k := NewMessage; k <= PostStart; k++ {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, parsed)
	}

	_, ok := ParseKind("unknown")
	assert.False(t, ok)
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestNewMeta_UniqueTags(t *testing.T) {
	t.Parallel()

	a, b := NewMeta(), NewMeta()
	assert.NotEmpty(t, a.Tag)
	assert.NotEqual(t, a.Tag, b.Tag)
}

func TestMetaFrom(t *testing.T) {
	t.Parallel()

	m := NewMeta()
	assert.Equal(t, m, MetaFrom(WithMeta(context.Background(), m)))

	fresh := MetaFrom(context.Background())
	assert.NotEmpty(t, fresh.Tag, "ctx에 Meta가 없으면 새 태그를 발급해야 합니다")
}
