package cronx

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// StandardParser 애플리케이션 표준 Cron 표현식 파서를 반환합니다.
//
// 초 단위를 포함하는 6필드 형식([초] [분] [시] [일] [월] [요일])과 @daily, @every <duration> 등의
// Descriptor를 지원하며, 표준 5필드 형식은 지원하지 않습니다.
//
// 예시:
//   - "0 */30 * * * *" : 매 30분 0초마다 실행 (판매 목록 갱신 기본값)
//   - "@every 10m"     : 10분 간격으로 실행
func StandardParser() cron.Parser {
	return cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// Validate 주어진 Cron 표현식이 StandardParser로 해석 가능한지 검증합니다.
func Validate(spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return fmt.Errorf("Cron 표현식이 비어 있습니다")
	}
	if _, err := StandardParser().Parse(spec); err != nil {
		return fmt.Errorf("Cron 표현식 해석 실패 (형식: 초 분 시 일 월 요일): '%s': %w", spec, err)
	}
	return nil
}
