// Package blocklist 차단된 구매자 목록과 차단 게이트를 관리합니다.
package blocklist

import (
	"encoding/json"
	"errors"
	"os"
	"slices"
	"sync"

	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/pkg/atomicfile"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/samber/lo"
)

const component = "blocklist"

// Gate 차단된 구매자에 대해 막을 수 있는 동작
type Gate int

const (
	GateDelivery Gate = iota
	GateResponse
	GateNewMessageNotification
	GateNewOrderNotification
	GateCommandNotification
)

// Gates 동작별 차단 여부. 각 게이트는 서로 독립적입니다.
type Gates struct {
	Delivery               bool
	Response               bool
	NewMessageNotification bool
	NewOrderNotification   bool
	CommandNotification    bool
}

// GatesFromConfig 설정으로부터 게이트를 생성합니다.
func GatesFromConfig(c config.BlockListConfig) Gates {
	return Gates{
		Delivery:               c.BlockDelivery,
		Response:               c.BlockResponse,
		NewMessageNotification: c.BlockNewMessageNotification,
		NewOrderNotification:   c.BlockNewOrderNotification,
		CommandNotification:    c.BlockCommandNotification,
	}
}

// Enabled 게이트가 켜져 있는지 반환합니다.
func (g Gates) Enabled(gate Gate) bool {
	switch gate {
	case GateDelivery:
		return g.Delivery
	case GateResponse:
		return g.Response
	case GateNewMessageNotification:
		return g.NewMessageNotification
	case GateNewOrderNotification:
		return g.NewOrderNotification
	case GateCommandNotification:
		return g.CommandNotification
	default:
		return false
	}
}

// List 차단된 구매자 사용자명 집합입니다. 파일(JSON 문자열 배열)에 영속화됩니다.
type List struct {
	path string

	mu    sync.RWMutex
	users map[string]struct{}
}

// New 빈 목록을 생성합니다. path가 비어 있으면 Save/Load는 아무것도 하지 않습니다.
func New(path string) *List {
	return &List{
		path:  path,
		users: make(map[string]struct{}),
	}
}

// Open 목록을 생성하고 파일에서 읽어옵니다.
func Open(path string) (*List, error) {
	l := New(path)
	if err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}

// Contains 사용자가 차단되어 있는지 확인합니다.
func (l *List) Contains(username string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.users[username]
	return ok
}

// Blocks 사용자가 차단되어 있고 해당 게이트가 켜져 있을 때 true를 반환합니다.
func (l *List) Blocks(gates Gates, gate Gate, username string) bool {
	return gates.Enabled(gate) && l.Contains(username)
}

// Add 사용자를 추가합니다. 이미 있으면 false를 반환합니다.
func (l *List) Add(username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.users[username]; ok || username == "" {
		return false
	}
	l.users[username] = struct{}{}
	return true
}

// Remove 사용자를 제거합니다. 없으면 false를 반환합니다.
func (l *List) Remove(username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.users[username]; !ok {
		return false
	}
	delete(l.users, username)
	return true
}

// Users 차단된 사용자명을 정렬하여 반환합니다.
func (l *List) Users() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	users := lo.Keys(l.users)
	slices.Sort(users)
	return users
}

// Load 파일에서 목록을 읽어 현재 목록을 대체합니다. 파일이 없으면 빈 목록이 됩니다.
func (l *List) Load() error {
	if l.path == "" {
		return nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applog.WithComponentAndFields(component, applog.Fields{
				"path": l.path,
			}).Debug("차단 목록 파일이 없어 빈 목록으로 시작합니다")

			l.mu.Lock()
			l.users = make(map[string]struct{})
			l.mu.Unlock()
			return nil
		}
		return newErrLoadFailed(err, l.path)
	}

	var names []string
	if len(data) > 0 {
		if err := json.Unmarshal(data, &names); err != nil {
			return newErrCorrupted(err, l.path)
		}
	}

	users := lo.SliceToMap(lo.Compact(names), func(n string) (string, struct{}) { return n, struct{}{} })

	l.mu.Lock()
	l.users = users
	l.mu.Unlock()

	applog.WithComponentAndFields(component, applog.Fields{
		"path":  l.path,
		"count": len(users),
	}).Info("차단 목록을 불러왔습니다")

	return nil
}

// Save 현재 목록을 파일에 원자적으로 기록합니다.
func (l *List) Save() error {
	if l.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(l.Users(), "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(l.path, data, 0644)
}
