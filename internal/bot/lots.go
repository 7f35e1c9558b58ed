package bot

import (
	"sync"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
)

// LotCache 판매자가 보유한 것으로 알려진 상품 목록입니다.
//
// 비활성화된 상품은 원격 프로필에서 사라지므로, 갱신은 병합(추가/제목 갱신)만 하고 삭제하지 않습니다.
// 그래야 동기화기가 비활성화된 상품을 다시 복구할 수 있습니다.
type LotCache struct {
	mu          sync.RWMutex
	lots        []marketplace.Lot
	index       map[int64]int
	refreshedAt time.Time
}

// NewLotCache 빈 목록을 생성합니다.
func NewLotCache() *LotCache {
	return &LotCache{index: make(map[int64]int)}
}

// KnownLots 알려진 상품을 처음 발견된 순서대로 반환합니다.
func (c *LotCache) KnownLots() []marketplace.Lot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]marketplace.Lot(nil), c.lots...)
}

// Merge 상품들을 병합하고 새로 추가된 수를 반환합니다.
func (c *LotCache) Merge(lots []marketplace.Lot) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, lot := range lots {
		if i, ok := c.index[lot.ID]; ok {
			c.lots[i] = lot
			continue
		}
		c.index[lot.ID] = len(c.lots)
		c.lots = append(c.lots, lot)
		added++
	}
	c.refreshedAt = time.Now()

	return added
}

func (c *LotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.lots)
}

// RefreshedAt 마지막으로 병합한 시각. 한 번도 갱신되지 않았으면 zero 값입니다.
func (c *LotCache) RefreshedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.refreshedAt
}
