// Package constants 운영 API 전반에서 공유하는 컴포넌트 이름, 메시지, 기본값을 정의합니다.
package constants

import "time"

// 로그 컴포넌트
const (
	ComponentService      = "api.service"
	ComponentHandler      = "api.handler"
	ComponentMiddleware   = "api.middleware"
	ComponentErrorHandler = "api.error_handler"
)

// 인증
const (
	HeaderAppKey     = "X-App-Key"
	QueryParamAppKey = "app_key"
)

// SensitiveQueryParams 요청 로그에서 마스킹되는 쿼리 파라미터
var SensitiveQueryParams = []string{
	QueryParamAppKey,
	"api_key",
	"password",
	"token",
	"secret",
}

// HTTP 서버 기본값
const (
	DefaultRequestTimeout    = 60 * time.Second
	DefaultReadTimeout       = 30 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 90 * time.Second
	DefaultIdleTimeout       = 120 * time.Second

	DefaultMaxBodySize = "128K"

	DefaultRateLimitPerSecond = 20
	DefaultRateLimitBurst     = 40
)

// 헬스체크
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"

	MsgDepStatusHealthy = "정상 작동 중"
)

// 클라이언트에 반환되는 에러 메시지
const (
	ErrMsgBadRequest            = "잘못된 요청입니다"
	ErrMsgBadRequestInvalidBody = "요청 본문을 파싱할 수 없습니다. JSON 형식을 확인해주세요"

	ErrMsgAuthAppKeyRequired = "app_key는 필수입니다 (X-App-Key 헤더 또는 app_key 쿼리 파라미터)"
	ErrMsgAuthInvalidAppKey  = "app_key가 유효하지 않습니다"

	ErrMsgNotFound     = "요청한 리소스를 찾을 수 없습니다"
	ErrMsgRuleNotFound = "등록되지 않은 배송 규칙입니다"

	ErrMsgRuleAlreadyExists    = "같은 이름의 배송 규칙이 이미 있습니다"
	ErrMsgProductsFileNotFound = "존재하지 않는 상품 파일입니다"
	ErrMsgProductsFileInUse    = "배송 규칙에서 사용 중인 상품 파일은 삭제할 수 없습니다"

	ErrMsgUnsupportedMediaType = "지원하지 않는 Content-Type 형식입니다"
	ErrMsgTooManyRequests      = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요"

	ErrMsgInternalServer = "내부 서버 오류가 발생했습니다"
)

// 서비스 로그 메시지
const (
	LogMsgServiceStarting       = "API 서비스 시작중..."
	LogMsgServiceStarted        = "API 서비스 시작됨"
	LogMsgServiceAlreadyStarted = "API 서비스가 이미 시작됨!!!"
	LogMsgServiceStopping       = "API 서비스 중지중..."
	LogMsgServiceStopped        = "API 서비스 중지됨"
	LogMsgServiceUnexpectedExit = "API 서비스가 예기치 않게 종료되었습니다"

	LogMsgServiceHTTPServerStarting      = "API 서비스 > http 서버 시작"
	LogMsgServiceHTTPServerStopped       = "API 서비스 > http 서버 중지됨"
	LogMsgServiceHTTPServerShutdownError = "API 서비스 > http 서버 종료 중 오류 발생"
	LogMsgServiceHTTPServerFatalError    = "API 서비스 > http 서버를 구성하는 중에 치명적인 오류가 발생하였습니다."

	LogMsgHTTP4xxClientError = "HTTP 4xx: 클라이언트 요청 오류"
	LogMsgHTTP5xxServerError = "HTTP 5xx: 서버 내부 오류"
)
