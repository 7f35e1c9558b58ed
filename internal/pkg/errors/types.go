package errors

import "strconv"

// ErrorType 에러의 종류를 나타내는 타입입니다.
type ErrorType int

const (
	// Unknown 분류할 수 없는 에러 (기본값)
	Unknown ErrorType = iota

	// Internal 내부 로직 오류 (버그, 예상하지 못한 상태 등)
	Internal

	// System 디스크 I/O, 파일 rename 등 인프라 수준의 오류
	System

	// Unauthorized API 인증 실패 (App Key 불일치 등)
	Unauthorized

	// InvalidInput 잘못된 입력값 (설정 검증 실패, 잘못된 요청 본문 등)
	InvalidInput

	// Conflict 상태 충돌 (이미 존재하는 상품 파일 등)
	Conflict

	// NotFound 리소스를 찾을 수 없음 (상품 파일, 배송 규칙, 테스트 키 등)
	NotFound

	// OutOfStock 상품 파일에 남은 재고가 없음
	OutOfStock

	// ExecutionFailed 외부 호출 또는 비즈니스 로직 수행 실패
	ExecutionFailed

	// ParsingFailed 원격 응답(JSON/HTML) 파싱 실패
	ParsingFailed

	// Timeout 작업 시간 초과
	Timeout

	// Unavailable 일시적으로 사용할 수 없음 (종료 중인 서비스, 원격 5xx 등)
	Unavailable
)

var errorTypeNames = [...]string{
	Unknown:         "Unknown",
	Internal:        "Internal",
	System:          "System",
	Unauthorized:    "Unauthorized",
	InvalidInput:    "InvalidInput",
	Conflict:        "Conflict",
	NotFound:        "NotFound",
	OutOfStock:      "OutOfStock",
	ExecutionFailed: "ExecutionFailed",
	ParsingFailed:   "ParsingFailed",
	Timeout:         "Timeout",
	Unavailable:     "Unavailable",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return "ErrorType(" + strconv.Itoa(int(t)) + ")"
	}
	return errorTypeNames[t]
}
