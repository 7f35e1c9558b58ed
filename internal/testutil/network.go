// Package testutil 여러 패키지의 테스트가 공유하는 보조 함수
package testutil

import (
	"fmt"
	"net"
	"time"
)

// FreePort 지금 비어 있는 로컬 TCP 포트를 반환합니다.
func FreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}

// WaitForListen port에 연결할 수 있을 때까지 최대 timeout 동안 기다립니다.
func WaitForListen(port int, timeout time.Duration) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			return conn.Close()
		}
		time.Sleep(20 * time.Millisecond)
	}

	return fmt.Errorf("%s에서 대기 중인 서버가 없습니다 (timeout: %s)", addr, timeout)
}
