package concurrency

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestKeyedMutex_SameKeySerialized 동일한 키에 대한 작업은 직렬화되어야 합니다.
func TestKeyedMutex_SameKeySerialized(t *testing.T) {
	km := NewKeyedMutex[string]()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = km.WithLock("products/a.txt", func() error {
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Zero(t, km.Len(), "모든 작업 종료 후 키가 정리되어야 합니다")
}

// TestKeyedMutex_DifferentKeysIndependent 서로 다른 키는 서로를 차단하지 않아야 합니다.
func TestKeyedMutex_DifferentKeysIndependent(t *testing.T) {
	km := NewKeyedMutex[string]()

	km.Lock("a")
	defer km.Unlock("a")

	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("다른 키의 락 획득이 차단되었습니다")
	}
}

func TestKeyedMutex_TryLock(t *testing.T) {
	km := NewKeyedMutex[int]()

	require.True(t, km.TryLock(1))
	assert.False(t, km.TryLock(1))
	assert.Equal(t, 1, km.Len())

	km.Unlock(1)
	assert.Zero(t, km.Len())
	assert.True(t, km.TryLock(1))
	km.Unlock(1)
}

func TestKeyedMutex_WithLock(t *testing.T) {
	km := NewKeyedMutex[string]()
	errBoom := errors.New("boom")

	err := km.WithLock("k", func() error { return errBoom })
	assert.ErrorIs(t, err, errBoom)

	assert.Panics(t, func() {
		_ = km.WithLock("k", func() error { panic("x") })
	})
	assert.Zero(t, km.Len(), "panic 이후에도 락이 해제되어야 합니다")
}

func TestKeyedMutex_UnlockWithoutLock(t *testing.T) {
	km := NewKeyedMutex[string]()

	assert.Panics(t, func() { km.Unlock("none") })
}
