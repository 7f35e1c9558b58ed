package config

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/text/cases"
)

// Snapshot 실행 중 변경될 수 있는 설정(기능 토글, 차단 게이트, 자동 응답, 배송 규칙)의 불변 사본입니다.
//
// 한 번 게시된 Snapshot은 수정되지 않습니다. 변경은 Store.Update를 통해 새 Snapshot으로 교체됩니다.
type Snapshot struct {
	Features     FeaturesConfig
	Telegram     TelegramConfig
	BlockList    BlockListConfig
	AutoResponse []AutoResponseConfig
	Rules        []DeliveryRule
}

// NewSnapshot AppConfig로부터 최초 Snapshot을 생성합니다.
func NewSnapshot(c *AppConfig) *Snapshot {
	s := &Snapshot{
		Features:     c.Features,
		Telegram:     c.Telegram,
		BlockList:    c.BlockList,
		AutoResponse: slices.Clone(c.AutoResponse),
		Rules:        slices.Clone(c.AutoDelivery),
	}
	return s
}

func (s *Snapshot) clone() *Snapshot {
	c := *s
	c.AutoResponse = slices.Clone(s.AutoResponse)
	c.Rules = slices.Clone(s.Rules)
	return &c
}

// FindRule 주문 제목에 규칙 이름이 포함된 첫 번째 배송 규칙을 반환합니다.
func (s *Snapshot) FindRule(title string) (DeliveryRule, bool) {
	for _, r := range s.Rules {
		if strings.Contains(title, r.Name) {
			return r, true
		}
	}
	return DeliveryRule{}, false
}

// RuleByName 이름이 정확히 일치하는 배송 규칙을 반환합니다.
func (s *Snapshot) RuleByName(name string) (DeliveryRule, bool) {
	i := slices.IndexFunc(s.Rules, func(r DeliveryRule) bool { return r.Name == name })
	if i < 0 {
		return DeliveryRule{}, false
	}
	return s.Rules[i], true
}

// FindAutoResponse 채팅 메시지가 자동 응답 명령어와 일치하는지 확인합니다. (대소문자 무시, 앞뒤 공백 제거)
func (s *Snapshot) FindAutoResponse(text string) (AutoResponseConfig, bool) {
	fold := cases.Fold()
	key := fold.String(strings.TrimSpace(text))
	for _, r := range s.AutoResponse {
		if fold.String(strings.TrimSpace(r.Command)) == key {
			return r, true
		}
	}
	return AutoResponseConfig{}, false
}

// Store Snapshot을 원자적으로 게시하는 저장소입니다.
//
// 읽기(Load)는 잠금 없이 수행되며, 항상 변경 전 또는 변경 후의 완전한 Snapshot을 관찰합니다.
// 쓰기(Update)는 직렬화됩니다.
type Store struct {
	current atomic.Pointer[Snapshot]
	writeMu sync.Mutex
}

// NewStore 초기 Snapshot으로 Store를 생성합니다.
func NewStore(initial *Snapshot) *Store {
	s := &Store{}
	s.current.Store(initial)
	return s
}

// Load 현재 게시된 Snapshot을 반환합니다. 반환된 값은 수정해서는 안 됩니다.
func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

// Update 현재 Snapshot의 사본에 mutate를 적용하고, 검증에 통과하면 새 Snapshot으로 게시합니다.
// mutate 또는 검증이 실패하면 기존 Snapshot이 유지됩니다.
func (s *Store) Update(mutate func(*Snapshot) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.current.Load().clone()
	if err := mutate(next); err != nil {
		return err
	}

	v := newValidator()
	if err := validateAutoResponses(v, next.AutoResponse); err != nil {
		return err
	}
	if err := validateDeliveryRules(v, next.Rules); err != nil {
		return err
	}

	s.current.Store(next)

	return nil
}
