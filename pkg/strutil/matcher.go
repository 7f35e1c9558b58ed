package strutil

import (
	"strings"
)

// KeywordMatcher 미리 소문자로 정규화한 키워드 조건으로 여러 문자열을 검사합니다.
type KeywordMatcher struct {
	// includedGroups 모든 그룹을 만족해야 합니다(AND). 그룹 안은 파이프(|)로 구분된 OR 조건입니다.
	// 예: ["A", "B|C"] -> A를 포함하고, (B 또는 C)를 포함해야 함
	includedGroups [][]string

	// excluded 하나라도 포함되면 매칭 실패
	excluded []string
}

// NewKeywordMatcher 포함/제외 키워드로 KeywordMatcher를 생성합니다. 빈 키워드는 무시됩니다.
func NewKeywordMatcher(included, excluded []string) *KeywordMatcher {
	m := &KeywordMatcher{
		includedGroups: make([][]string, 0, len(included)),
		excluded:       make([]string, 0, len(excluded)),
	}

	for _, k := range excluded {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		m.excluded = append(m.excluded, strings.ToLower(k))
	}

	for _, k := range included {
		group := SplitClean(k, "|")
		if len(group) == 0 {
			continue
		}
		for i, v := range group {
			group[i] = strings.ToLower(v)
		}
		m.includedGroups = append(m.includedGroups, group)
	}

	return m
}

// Match s가 제외 키워드를 포함하지 않고 모든 포함 그룹을 만족하면 true를 반환합니다.
func (m *KeywordMatcher) Match(s string) bool {
	for _, k := range m.excluded {
		if containsFold(s, k) {
			return false
		}
	}

	for _, group := range m.includedGroups {
		matched := false
		for _, k := range group {
			if containsFold(s, k) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// containsFold s가 substr을 대소문자 구분 없이 포함하는지 검사합니다.
//
// 대소문자 변환 후에도 바이트 길이가 같다고 가정합니다. 키릴 문자와 ASCII는 이 가정을 만족합니다.
func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	if len(s) < len(substr) {
		return false
	}

	for i := range s {
		if i+len(substr) > len(s) {
			break
		}
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return true
		}
	}
	return false
}
