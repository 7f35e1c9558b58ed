package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStd = errors.New("standard error")

// =============================================================================
// 생성 / 래핑
// =============================================================================

func TestNew(t *testing.T) {
	err := New(NotFound, "상품 파일을 찾을 수 없습니다")

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, NotFound, appErr.Type())
	assert.Equal(t, "상품 파일을 찾을 수 없습니다", appErr.Message())
	assert.Equal(t, "[NotFound] 상품 파일을 찾을 수 없습니다", err.Error())
	assert.NotEmpty(t, appErr.Stack())
}

func TestWrap(t *testing.T) {
	t.Run("nil 에러는 nil을 반환", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, System, "ignored"))
		assert.Nil(t, Wrapf(nil, System, "ignored %d", 1))
	})

	t.Run("원인 에러를 보존", func(t *testing.T) {
		err := Wrapf(errStd, System, "파일 쓰기 실패: %s", "a.txt")

		assert.Equal(t, "[System] 파일 쓰기 실패: a.txt: standard error", err.Error())
		assert.True(t, errors.Is(err, errStd))
		assert.Equal(t, errStd, errors.Unwrap(err))
	})
}

// =============================================================================
// 타입 검사
// =============================================================================

func TestIs(t *testing.T) {
	err := Wrap(New(OutOfStock, "재고 없음"), ExecutionFailed, "배송 실패")

	assert.True(t, Is(err, OutOfStock))
	assert.True(t, Is(err, ExecutionFailed))
	assert.False(t, Is(err, NotFound))
	assert.False(t, Is(nil, Unknown))
	assert.False(t, Is(errStd, Unknown))
}

func TestUnderlyingType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, Unknown},
		{"표준 에러", errStd, Unknown},
		{"단일 AppError", New(Conflict, "x"), Conflict},
		{"가장 안쪽 타입", Wrap(New(NotFound, "x"), Internal, "y"), NotFound},
		{"외부 에러 래핑", Wrap(errStd, Timeout, "y"), Timeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnderlyingType(tt.err))
		})
	}
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "OutOfStock", OutOfStock.String())
	assert.Equal(t, "ErrorType(99)", ErrorType(99).String())
}

// =============================================================================
// 포맷 / panic 변환
// =============================================================================

func TestFormat_Verbose(t *testing.T) {
	err := Wrap(errStd, System, "rename 실패")

	out := fmt.Sprintf("%+v", err)

	assert.Contains(t, out, "[System] rename 실패")
	assert.Contains(t, out, "Stack trace:")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, "standard error")
	assert.Equal(t, err.Error(), fmt.Sprintf("%s", err))
}

func TestFromPanic(t *testing.T) {
	t.Run("문자열 panic", func(t *testing.T) {
		err := FromPanic("boom", "핸들러 panic")

		assert.True(t, Is(err, Internal))
		assert.Equal(t, "[Internal] 핸들러 panic: boom", err.Error())
	})

	t.Run("에러 panic은 원인으로 보존", func(t *testing.T) {
		err := FromPanic(errStd, "핸들러 panic")

		assert.True(t, errors.Is(err, errStd))
	})
}
