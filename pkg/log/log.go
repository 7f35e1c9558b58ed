// Package log logrus 기반의 애플리케이션 로깅 유틸리티를 제공합니다.
//
// 모든 로그는 component 필드를 가지며, 패키지마다 선언한 component 상수를 통해 출처를 구분합니다.
//
//	applog.WithComponentAndFields("delivery.workflow", applog.Fields{
//	    "order_id": order.ID,
//	}).Info("상품 배송 완료")
package log

import (
	"github.com/sirupsen/logrus"
)

// WithComponent component 필드를 포함한 로그 Entry를 반환합니다.
func WithComponent(component string) *Entry {
	return logrus.WithField("component", component)
}

// WithComponentAndFields component 필드와 추가 필드를 포함한 로그 Entry를 반환합니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	newFields := make(Fields, len(fields)+1)
	for k, v := range fields {
		newFields[k] = v
	}
	newFields["component"] = component
	return logrus.WithFields(newFields)
}

// StandardLogger 전역 logrus Logger를 반환합니다. (robfig/cron 등 외부 라이브러리 어댑터 연결용)
func StandardLogger() *Logger {
	return logrus.StandardLogger()
}

// SetLevel 전역 로그 레벨을 변경합니다.
func SetLevel(level Level) {
	logrus.SetLevel(level)
}

// GetLevel 현재 전역 로그 레벨을 반환합니다.
func GetLevel() Level {
	return logrus.GetLevel()
}
