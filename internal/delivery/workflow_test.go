package delivery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/inventory"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace/mocks"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

type postCall struct {
	order    marketplace.Order
	ruleName string
	text     string
	errored  bool
}

type hookRecorder struct {
	pre     []string
	post    []postCall
	blocked []string
}

func (r *hookRecorder) hooks() Hooks {
	return Hooks{
		Pre: func(_ context.Context, _ marketplace.Order, ruleName string) {
			r.pre = append(r.pre, ruleName)
		},
		Post: func(_ context.Context, order marketplace.Order, ruleName, text string, errored bool) {
			r.post = append(r.post, postCall{order, ruleName, text, errored})
		},
		Blocked: func(_ context.Context, order marketplace.Order) {
			r.blocked = append(r.blocked, order.ID)
		},
	}
}

func noSleepPolicy() marketplace.RetryPolicy {
	return marketplace.RetryPolicy{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
}

func newStore(t *testing.T, files map[string]string) *inventory.Store {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	s, err := inventory.NewStore(dir)
	require.NoError(t, err)
	return s
}

func newWorkflow(client *mocks.MockClient, store *inventory.Store, rec *hookRecorder) *Workflow {
	w := NewWorkflow(client, store, noSleepPolicy(), rec.hooks())
	w.now = func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) }
	return w
}

var testOrder = marketplace.Order{
	ID:            "#ABCD1234",
	Title:         "Steam key GTA V, мгновенная доставка",
	Price:         150.5,
	BuyerUsername: "buyer",
	BuyerID:       77,
	Status:        marketplace.OrderOutstanding,
}

func snapshot(rules ...config.DeliveryRule) *config.Snapshot {
	return &config.Snapshot{Rules: rules}
}

// =============================================================================
// Skip 경로
// =============================================================================

func TestWorkflow_Deliver_Skips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		snap      *config.Snapshot
		blocked   bool
		want      Status
		wantBlock int
	}{
		{
			name: "규칙 없음",
			snap: snapshot(config.DeliveryRule{Name: "Netflix", Response: "x"}),
			want: SkippedNoRule,
		},
		{
			name: "규칙 비활성화",
			snap: snapshot(config.DeliveryRule{Name: "GTA V", Response: "x", Disable: true}),
			want: SkippedDisabled,
		},
		{
			name:      "차단된 구매자",
			snap:      snapshot(config.DeliveryRule{Name: "GTA V", Response: "x"}),
			blocked:   true,
			want:      SkippedBlocked,
			wantBlock: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &mocks.MockClient{}
			rec := &hookRecorder{}
			w := newWorkflow(client, newStore(t, nil), rec)

			outcome := w.Deliver(context.Background(), tt.snap, testOrder, tt.blocked)

			assert.Equal(t, tt.want, outcome.Status)
			assert.True(t, outcome.Status.Skipped())
			assert.Empty(t, rec.pre, "건너뛴 주문에는 훅이 실행되지 않아야 합니다")
			assert.Empty(t, rec.post)
			assert.Len(t, rec.blocked, tt.wantBlock)
			client.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWorkflow_Deliver_FirstMatchingRuleWins(t *testing.T) {
	t.Parallel()

	client := &mocks.MockClient{}
	client.On("GetNodeIDByUsername", mock.Anything, "buyer").Return(int64(10), nil)
	client.On("SendMessage", mock.Anything, int64(10), "first").Return(nil)

	rec := &hookRecorder{}
	w := newWorkflow(client, newStore(t, nil), rec)

	snap := snapshot(
		config.DeliveryRule{Name: "Steam key", Response: "first"},
		config.DeliveryRule{Name: "GTA V", Response: "second"},
	)
	outcome := w.Deliver(context.Background(), snap, testOrder, false)

	assert.Equal(t, Delivered, outcome.Status)
	assert.Equal(t, "Steam key", outcome.RuleName)
	client.AssertExpectations(t)
}

// =============================================================================
// 상품 파일이 없는 규칙
// =============================================================================

func TestWorkflow_Deliver_WithoutProductsFile(t *testing.T) {
	t.Parallel()

	client := &mocks.MockClient{}
	client.On("GetNodeIDByUsername", mock.Anything, "buyer").Return(int64(10), nil)
	client.On("SendMessage", mock.Anything, int64(10), "Спасибо, buyer! Заказ #ABCD1234 (150.5) от 05.03.2024").Return(nil)

	rec := &hookRecorder{}
	w := newWorkflow(client, newStore(t, nil), rec)

	snap := snapshot(config.DeliveryRule{Name: "GTA V", Response: "Спасибо, $username! Заказ $order_id ($price) от $date"})
	outcome := w.Deliver(context.Background(), snap, testOrder, false)

	assert.Equal(t, Delivered, outcome.Status)
	assert.Equal(t, NotStockTracked, outcome.Remaining)
	assert.Equal(t, []string{"GTA V"}, rec.pre)
	require.Len(t, rec.post, 1)
	assert.False(t, rec.post[0].errored)
	assert.Equal(t, "Спасибо, buyer! Заказ #ABCD1234 (150.5) от 05.03.2024", rec.post[0].text)
	client.AssertExpectations(t)
}

// =============================================================================
// 상품 파일이 연결된 규칙
// =============================================================================

func TestWorkflow_Deliver_TakesOneUnit(t *testing.T) {
	t.Parallel()

	store := newStore(t, map[string]string{"gta.txt": "KEY-1\\nPIN-1\nKEY-2\n"})

	client := &mocks.MockClient{}
	client.On("GetNodeIDByUsername", mock.Anything, "buyer").Return(int64(10), nil)
	client.On("SendMessage", mock.Anything, int64(10), "Ваш товар:\nKEY-1\nPIN-1").Return(nil)

	rec := &hookRecorder{}
	w := newWorkflow(client, store, rec)

	snap := snapshot(config.DeliveryRule{Name: "GTA V", Response: "Ваш товар:\n$product", ProductsFile: "gta.txt"})
	outcome := w.Deliver(context.Background(), snap, testOrder, false)

	assert.Equal(t, Delivered, outcome.Status)
	assert.Equal(t, 1, outcome.Remaining)

	count, err := store.Count("gta.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	client.AssertExpectations(t)
}

func TestWorkflow_Deliver_SendFailureReturnsUnit(t *testing.T) {
	t.Parallel()

	store := newStore(t, map[string]string{"gta.txt": "ONLY-KEY\n"})

	client := &mocks.MockClient{}
	client.On("GetNodeIDByUsername", mock.Anything, "buyer").Return(int64(10), nil)
	client.On("SendMessage", mock.Anything, int64(10), "ONLY-KEY").Return(errors.New("503")).Times(3)

	rec := &hookRecorder{}
	w := newWorkflow(client, store, rec)

	snap := snapshot(config.DeliveryRule{Name: "GTA V", Response: "$product", ProductsFile: "gta.txt"})
	outcome := w.Deliver(context.Background(), snap, testOrder, false)

	assert.Equal(t, Failed, outcome.Status)
	assert.Equal(t, SendFailedText, outcome.Text)

	count, err := store.Count("gta.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "전송 실패 시 재고가 줄어서는 안 됩니다")

	unit, err := store.Take("gta.txt")
	require.NoError(t, err)
	assert.Equal(t, "ONLY-KEY", unit, "반환된 단위는 꺼낸 단위와 동일해야 합니다")

	require.Len(t, rec.post, 1)
	assert.True(t, rec.post[0].errored)
	assert.Equal(t, SendFailedText, rec.post[0].text)
	client.AssertExpectations(t)
}

func TestWorkflow_Deliver_OutOfStock(t *testing.T) {
	t.Parallel()

	store := newStore(t, map[string]string{"gta.txt": ""})

	client := &mocks.MockClient{}
	client.On("GetNodeIDByUsername", mock.Anything, "buyer").Return(int64(10), nil)

	rec := &hookRecorder{}
	w := newWorkflow(client, store, rec)

	snap := snapshot(config.DeliveryRule{Name: "GTA V", Response: "$product", ProductsFile: "gta.txt"})
	outcome := w.Deliver(context.Background(), snap, testOrder, false)

	assert.Equal(t, Failed, outcome.Status)
	assert.True(t, apperrors.Is(outcome.Err, apperrors.OutOfStock))
	require.Len(t, rec.post, 1)
	assert.True(t, rec.post[0].errored)
	assert.Equal(t, outcome.Err.Error(), rec.post[0].text)
	client.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_Deliver_PanicReturnsUnitAndRunsPostHook(t *testing.T) {
	t.Parallel()

	store := newStore(t, map[string]string{"gta.txt": "KEY\n"})

	client := &mocks.MockClient{}
	client.On("GetNodeIDByUsername", mock.Anything, "buyer").Return(int64(10), nil)
	client.On("SendMessage", mock.Anything, int64(10), "KEY").Run(func(mock.Arguments) {
		panic("connection reset")
	})

	rec := &hookRecorder{}
	w := newWorkflow(client, store, rec)

	snap := snapshot(config.DeliveryRule{Name: "GTA V", Response: "$product", ProductsFile: "gta.txt"})

	var outcome Outcome
	assert.NotPanics(t, func() {
		outcome = w.Deliver(context.Background(), snap, testOrder, false)
	})

	assert.Equal(t, Failed, outcome.Status)
	assert.Contains(t, outcome.Text, "connection reset")

	count, err := store.Count("gta.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, rec.post, 1)
	assert.True(t, rec.post[0].errored)
}

func TestWorkflow_Deliver_NodeLookupFailure(t *testing.T) {
	t.Parallel()

	store := newStore(t, map[string]string{"gta.txt": "KEY\n"})

	client := &mocks.MockClient{}
	client.On("GetNodeIDByUsername", mock.Anything, "buyer").Return(int64(0), errors.New("timeout"))

	rec := &hookRecorder{}
	w := newWorkflow(client, store, rec)

	snap := snapshot(config.DeliveryRule{Name: "GTA V", Response: "$product", ProductsFile: "gta.txt"})
	outcome := w.Deliver(context.Background(), snap, testOrder, false)

	assert.Equal(t, Failed, outcome.Status)
	count, _ := store.Count("gta.txt")
	assert.Equal(t, 1, count, "채팅 조회 실패 시 재고를 꺼내지 않아야 합니다")
	assert.Len(t, rec.post, 1)
}

// =============================================================================
// Render
// =============================================================================

func TestRender(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	got := Render("$username/$order_id/$order_title/$price/$date/$full_date/$product", testOrder, now)

	assert.Equal(t, "buyer/#ABCD1234/Steam key GTA V, мгновенная доставка/150.5/05.03.2024/05.03.2024 14:07:09/$product", got)
}

func TestRenderMessage(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	msg := marketplace.Message{Text: "!цена", NodeID: 1001, ChatWith: "buyer"}

	got := RenderMessage("$username: $message_text ($chat_id, $date)", msg, now)

	assert.Equal(t, "buyer: !цена (1001, 05.03.2024)", got)
}
