package scheduler

import (
	"fmt"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
)

// NewErrInvalidCronSpec Cron 표현식이 올바르지 않아 작업 등록에 실패했을 때 반환하는 에러를 생성합니다.
func NewErrInvalidCronSpec(job, spec string, cause error) error {
	return apperrors.Wrap(cause, apperrors.InvalidInput, fmt.Sprintf("스케줄 등록 실패: 잘못된 Cron 표현식입니다 (job=%s, spec='%s')", job, spec))
}
