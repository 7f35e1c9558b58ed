package log

import (
	"github.com/sirupsen/logrus"
)

// Level logrus.Level의 별칭입니다.
type Level = logrus.Level

const (
	PanicLevel Level = logrus.PanicLevel
	FatalLevel Level = logrus.FatalLevel

	// ErrorLevel 처리를 이어가지만 운영자의 확인이 필요한 상태입니다. (배송 실패, 재고 파일 손상 등)
	ErrorLevel Level = logrus.ErrorLevel

	// WarnLevel 일시적인 원격 오류, 설정 불일치로 건너뛴 항목 등을 기록합니다.
	WarnLevel Level = logrus.WarnLevel

	InfoLevel  Level = logrus.InfoLevel
	DebugLevel Level = logrus.DebugLevel
	TraceLevel Level = logrus.TraceLevel
)

// AllLevels logrus.AllLevels의 별칭입니다.
var AllLevels = logrus.AllLevels

// Fields logrus.Fields의 별칭입니다.
type Fields = logrus.Fields

// Entry logrus.Entry의 별칭입니다.
type Entry = logrus.Entry

// Logger logrus.Logger의 별칭입니다.
type Logger = logrus.Logger

// Formatter logrus.Formatter의 별칭입니다.
type Formatter = logrus.Formatter
