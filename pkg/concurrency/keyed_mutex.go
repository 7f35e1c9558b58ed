package concurrency

import (
	"sync"
)

// KeyedMutex 키별로 독립적인 Mutex를 제공합니다.
// 서로 다른 키에 대한 작업은 병렬로 처리되며, 참조 카운트가 0이 된 키는 즉시 정리됩니다.
type KeyedMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*entry
}

type entry struct {
	mu       sync.Mutex
	refCount int
}

// NewKeyedMutex 새로운 KeyedMutex 인스턴스를 생성합니다.
func NewKeyedMutex[K comparable]() *KeyedMutex[K] {
	return &KeyedMutex[K]{
		locks: make(map[K]*entry),
	}
}

// Len 현재 락이 잡혀있거나 대기 중인 키의 개수를 반환합니다.
func (km *KeyedMutex[K]) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}

// Lock 지정된 키에 대한 락을 획득합니다.
func (km *KeyedMutex[K]) Lock(key K) {
	km.mu.Lock()
	e, ok := km.locks[key]
	if !ok {
		e = &entry{}
		km.locks[key] = e
	}
	e.refCount++
	km.mu.Unlock()

	e.mu.Lock()
}

// TryLock 대기하지 않고 락 획득을 시도합니다.
// false를 반환한 경우 Unlock을 호출해서는 안 됩니다.
func (km *KeyedMutex[K]) TryLock(key K) bool {
	km.mu.Lock()
	defer km.mu.Unlock()

	e, ok := km.locks[key]
	if !ok {
		e = &entry{refCount: 1}
		e.mu.Lock()
		km.locks[key] = e
		return true
	}

	if e.mu.TryLock() {
		e.refCount++
		return true
	}

	return false
}

// Unlock 지정된 키에 대한 락을 해제합니다.
// 잠기지 않은 키에 대해 호출하면 panic이 발생합니다.
func (km *KeyedMutex[K]) Unlock(key K) {
	km.mu.Lock()
	defer km.mu.Unlock()

	e, ok := km.locks[key]
	if !ok {
		panic("잠기지 않은 KeyedMutex의 잠금 해제 시도")
	}

	e.mu.Unlock()

	e.refCount--
	if e.refCount <= 0 {
		delete(km.locks, key)
	}
}

// WithLock 키에 대한 락을 획득한 상태에서 fn을 실행합니다. fn이 panic을 일으켜도 락은 해제됩니다.
func (km *KeyedMutex[K]) WithLock(key K, fn func() error) error {
	km.Lock(key)
	defer km.Unlock(key)

	return fn()
}
