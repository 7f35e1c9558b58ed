// Package validation 설정 값 형식 검증
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Origin CORS 허용 출처가 'scheme://host[:port]' 형식인지 검증합니다. '*'는 모든 출처를 뜻합니다.
func Origin(origin string) error {
	origin = strings.TrimSpace(origin)
	if origin == "*" {
		return nil
	}
	if origin == "" {
		return fmt.Errorf("출처(origin)가 비어 있습니다")
	}

	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("출처를 URL로 해석할 수 없습니다 (%q): %w", origin, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("출처의 스키마는 http 또는 https여야 합니다 (%q)", origin)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return fmt.Errorf("출처에는 스키마, 호스트, 포트만 포함될 수 있습니다 (%q)", origin)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("출처에 호스트가 없습니다 (%q)", origin)
	}
	if net.ParseIP(host) == nil && !isHostname(host) {
		return fmt.Errorf("출처의 호스트 이름이 올바르지 않습니다 (%q)", origin)
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("출처의 포트 번호가 올바르지 않습니다 (%q)", origin)
		}
	}

	return nil
}

// isHostname RFC 1123 호스트 이름 규칙(라벨 1~63자, 영숫자와 하이픈, 하이픈으로 시작/끝 불가)
func isHostname(host string) bool {
	if len(host) > 253 {
		return false
	}
	for label := range strings.SplitSeq(host, ".") {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, c := range label {
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
				return false
			}
		}
	}
	return true
}
