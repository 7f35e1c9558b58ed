// Package deliverytest 자동 배송을 실제 주문 없이 시험하기 위한 일회용 키를 발급합니다.
package deliverytest

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"golang.org/x/text/cases"
)

const (
	// CommandPrefix 채팅에서 시험 배송을 요청하는 명령어
	CommandPrefix = "!автовыдача"

	// KeyLength 발급되는 키의 길이
	KeyLength = 50

	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Keys 발급된 키와 상품명의 매핑입니다. 메모리에만 보관되며 각 키는 한 번만 사용할 수 있습니다.
type Keys struct {
	mu   sync.Mutex
	keys map[string]string
}

// NewKeys 빈 키 저장소를 생성합니다.
func NewKeys() *Keys {
	return &Keys{keys: make(map[string]string)}
}

// Issue 상품명에 연결된 새 키를 발급합니다.
func (k *Keys) Issue(lotName string) (string, error) {
	if strings.TrimSpace(lotName) == "" {
		return "", apperrors.New(apperrors.InvalidInput, "상품명이 비어 있습니다")
	}

	for {
		key, err := generateKey()
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.System, "시험 배송 키를 생성할 수 없습니다")
		}

		k.mu.Lock()
		if _, exists := k.keys[key]; !exists {
			k.keys[key] = lotName
			k.mu.Unlock()
			return key, nil
		}
		k.mu.Unlock()
	}
}

// Consume 키를 삭제하고 연결된 상품명을 반환합니다. 없는 키면 false를 반환합니다.
func (k *Keys) Consume(key string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	lotName, ok := k.keys[key]
	if ok {
		delete(k.keys, key)
	}
	return lotName, ok
}

// Len 사용되지 않은 키의 수
func (k *Keys) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.keys)
}

// generateKey 알파벳에서 중복 없이 KeyLength개의 문자를 뽑습니다.
func generateKey() (string, error) {
	pool := []byte(alphabet)
	for i := 0; i < KeyLength; i++ {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool)-i)))
		if err != nil {
			return "", err
		}
		n := i + int(j.Int64())
		pool[i], pool[n] = pool[n], pool[i]
	}
	return string(pool[:KeyLength]), nil
}

// IsCommand 채팅 메시지의 첫 단어가 시험 배송 명령어인지 확인합니다. (대소문자 무시)
// "!автовыдачаX"처럼 명령어로 시작하기만 하는 단어는 명령어가 아닙니다.
func IsCommand(text string) bool {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return false
	}

	fold := cases.Fold()
	return fold.String(tokens[0]) == fold.String(CommandPrefix)
}

// ParseCommand 명령어 뒤의 키를 추출합니다. 키가 없으면 false를 반환합니다.
func ParseCommand(text string) (string, bool) {
	if !IsCommand(text) {
		return "", false
	}

	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return "", false
	}
	return tokens[1], true
}
