// Package strutil 로그 마스킹, HTML 정리, 키워드 매칭 등 문자열 유틸리티를 제공합니다.
package strutil

import (
	"html"
	"regexp"
	"strings"
)

// < 다음에 영문자가 오는 경우만 태그로 인식합니다. "3 < 5"는 유지됩니다.
var htmlTagRegexp = regexp.MustCompile(`</?([a-zA-Z]+)[^>]*>`)

// SplitClean 문자열을 sep로 분리한 뒤 각 토큰의 앞뒤 공백을 제거하고 빈 토큰을 버립니다.
// 결과가 없으면 nil을 반환합니다.
// 예: "a, , b,c" (구분자 ",") -> ["a", "b", "c"]
func SplitClean(s, sep string) []string {
	var result []string
	for token := range strings.SplitSeq(s, sep) {
		token = strings.TrimSpace(token)
		if token != "" {
			result = append(result, token)
		}
	}
	return result
}

// MaskSensitiveData 토큰, 앱 키 등을 로그에 남길 수 있도록 마스킹합니다.
func MaskSensitiveData(data string) string {
	if data == "" {
		return ""
	}

	// 3자 이하는 전체 마스킹
	if len(data) <= 3 {
		return "***"
	}

	if len(data) <= 12 {
		return data[:4] + "***"
	}

	return data[:4] + "***" + data[len(data)-4:]
}

// StripHTMLTags HTML 태그를 제거하고 엔티티를 디코딩하여 순수한 텍스트를 반환합니다.
// 예: "<b>Hello</b> &amp; World" -> "Hello & World"
func StripHTMLTags(s string) string {
	return html.UnescapeString(htmlTagRegexp.ReplaceAllString(s, ""))
}
