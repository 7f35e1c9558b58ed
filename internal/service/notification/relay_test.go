package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestKeyboardBuilders(t *testing.T) {
	t.Parallel()

	kb := NewKeyboard(
		Row(CallbackButton("📨 Ответить", "to_node:1001")),
		Row(URLButton("🌐 Открыть", "https://funpay.com/orders/ABC/")),
	)

	require.Len(t, kb.Rows, 2)
	assert.Equal(t, Button{Text: "📨 Ответить", CallbackData: "to_node:1001"}, kb.Rows[0][0])
	assert.Equal(t, "https://funpay.com/orders/ABC/", kb.Rows[1][0].URL)
}

func TestNopService(t *testing.T) {
	t.Parallel()

	svc := NewNopService()
	assert.NotPanics(t, func() { svc.Notify("text", nil) })
	assert.NoError(t, svc.Health())

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, svc.Start(ctx, wg))

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("서비스가 종료되지 않았습니다")
	}
}
