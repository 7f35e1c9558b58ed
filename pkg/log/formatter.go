package log

import "github.com/sirupsen/logrus"

// silentFormatter 아무것도 출력하지 않는 포맷터입니다.
// 기본 출력이 io.Discard여도 logrus는 포맷팅을 수행하므로, hook에서만 포맷팅되도록 이 포맷터를 설정합니다.
type silentFormatter struct{}

func (f *silentFormatter) Format(_ *logrus.Entry) ([]byte, error) {
	return nil, nil
}
