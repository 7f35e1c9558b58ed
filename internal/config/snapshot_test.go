package config

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSnapshot() *Snapshot {
	return &Snapshot{
		AutoResponse: []AutoResponseConfig{
			{Command: "!Привет", Response: "Здравствуйте, $username!"},
		},
		Rules: []DeliveryRule{
			{Name: "Steam", Response: "$product", ProductsFile: "steam.txt"},
			{Name: "Steam Key", Response: "never chosen"},
			{Name: "Гайд", Response: "guide"},
		},
	}
}

func TestSnapshot_FindRule(t *testing.T) {
	t.Parallel()

	s := newTestSnapshot()

	t.Run("파일 순서상 처음 일치하는 규칙", func(t *testing.T) {
		r, ok := s.FindRule("Steam Key Random, Global")
		require.True(t, ok)
		assert.Equal(t, "Steam", r.Name)
	})

	t.Run("일치하는 규칙 없음", func(t *testing.T) {
		_, ok := s.FindRule("Origin account")
		assert.False(t, ok)
	})

	t.Run("이름 정확히 일치", func(t *testing.T) {
		r, ok := s.RuleByName("Гайд")
		require.True(t, ok)
		assert.Equal(t, "guide", r.Response)

		_, ok = s.RuleByName("Гай")
		assert.False(t, ok)
	})
}

func TestSnapshot_FindAutoResponse(t *testing.T) {
	t.Parallel()

	s := newTestSnapshot()

	r, ok := s.FindAutoResponse("  !привет ")
	require.True(t, ok)
	assert.Equal(t, "!Привет", r.Command)

	_, ok = s.FindAutoResponse("!привет всем")
	assert.False(t, ok)
}

func TestStore_Update(t *testing.T) {
	t.Parallel()

	t.Run("검증 통과 시 새 Snapshot 게시", func(t *testing.T) {
		store := NewStore(newTestSnapshot())
		before := store.Load()

		err := store.Update(func(s *Snapshot) error {
			s.Rules[2].Disable = true
			return nil
		})
		require.NoError(t, err)

		assert.False(t, before.Rules[2].Disable, "기존 Snapshot은 변경되지 않아야 합니다")
		assert.True(t, store.Load().Rules[2].Disable)
	})

	t.Run("$product 누락 시 거부", func(t *testing.T) {
		store := NewStore(newTestSnapshot())
		before := store.Load()

		err := store.Update(func(s *Snapshot) error {
			s.Rules[0].Response = "no placeholder"
			return nil
		})
		require.Error(t, err)
		assert.Same(t, before, store.Load())
	})

	t.Run("mutate 에러 시 유지", func(t *testing.T) {
		store := NewStore(newTestSnapshot())
		before := store.Load()

		err := store.Update(func(s *Snapshot) error { return errors.New("abort") })
		require.Error(t, err)
		assert.Same(t, before, store.Load())
	})
}

// TestStore_ConcurrentReaders 읽는 쪽은 항상 일관된(변경 전 또는 변경 후) Snapshot을 관찰해야 합니다.
func TestStore_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	store := NewStore(newTestSnapshot())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s := store.Load()
				assert.Equal(t, s.Rules[1].Disable, s.Rules[2].Disable)
			}
		}()
	}

	for j := 0; j < 50; j++ {
		require.NoError(t, store.Update(func(s *Snapshot) error {
			s.Rules[1].Disable = !s.Rules[1].Disable
			s.Rules[2].Disable = !s.Rules[2].Disable
			return nil
		}))
	}
	wg.Wait()
}
