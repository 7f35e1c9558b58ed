// Package errors 애플리케이션 전용 에러 타입(AppError)을 제공합니다.
//
// 모든 에러는 ErrorType으로 분류되고, Wrap으로 컨텍스트를 누적하며, 생성 시점의 호출 스택(최대 5단계)을 함께 보관합니다.
//
//	if err != nil {
//	    return errors.Wrap(err, errors.System, "상품 파일을 읽을 수 없습니다")
//	}
//
//	if errors.Is(err, errors.OutOfStock) {
//	    // 재고 소진 처리
//	}
//
// 타입 선택 기준:
//   - 디스크/파일 시스템 오류: System
//   - 재고 부족: OutOfStock
//   - 원격 마켓플레이스 호출 실패: ExecutionFailed (응답 해석 실패는 ParsingFailed)
//   - 설정/요청 값 검증 실패: InvalidInput
//   - 버그로 간주되는 상태, 복구된 panic: Internal
package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// AppError 애플리케이션에서 발생하는 모든 에러를 표준화하여 표현하는 구조체입니다.
type AppError struct {
	errType ErrorType    // 에러의 종류
	message string       // 사용자에게 보여줄 메시지
	cause   error        // 이 에러가 발생하게 된 근본 원인 (에러 체이닝)
	stack   []StackFrame // 에러 발생 시점의 함수 호출 스택 정보
}

// Type 에러의 타입을 반환합니다.
func (e *AppError) Type() ErrorType {
	return e.errType
}

// Message 에러 메시지를 반환합니다.
func (e *AppError) Message() string {
	return e.message
}

// Stack 스택 트레이스를 반환합니다.
func (e *AppError) Stack() []StackFrame {
	return e.stack
}

// Error "[Type] message" 또는 "[Type] message: cause"
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.errType, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.errType, e.message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Format %+v 사용 시 에러 체인과 스택 트레이스를 함께 출력합니다.
func (e *AppError) Format(s fmt.State, verb rune) {
	if verb != 'v' || !s.Flag('+') {
		if verb == 'q' {
			fmt.Fprintf(s, "%q", e.Error())
			return
		}
		io.WriteString(s, e.Error())
		return
	}

	fmt.Fprintf(s, "[%s] %s", e.errType, e.message)

	// 스택은 AppError 체인의 가장 안쪽에서만 출력합니다.
	var inner *AppError
	if e.cause == nil || !errors.As(e.cause, &inner) {
		e.writeStack(s)
	}

	if e.cause == nil {
		return
	}
	fmt.Fprint(s, "\nCaused by:\n")
	if f, ok := e.cause.(fmt.Formatter); ok {
		f.Format(s, verb)
	} else {
		fmt.Fprintf(s, "\t%v", e.cause)
	}
}

func (e *AppError) writeStack(w io.Writer) {
	if len(e.stack) == 0 {
		return
	}
	fmt.Fprint(w, "\nStack trace:")
	for _, f := range e.stack {
		fn := f.Function
		if i := strings.LastIndex(fn, "/"); i != -1 {
			fn = fn[i+1:]
		}
		fmt.Fprintf(w, "\n\t%s:%d %s", f.File, f.Line, fn)
	}
}

// newAppError New/Wrap 계열 함수의 공통 생성자. 스택은 그 함수들의 호출자부터 기록됩니다.
func newAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		errType: errType,
		message: message,
		cause:   cause,
		stack:   captureStack(defaultCallerSkip + 1),
	}
}

// New 새로운 에러를 생성합니다.
func New(errType ErrorType, message string) error {
	return newAppError(errType, message, nil)
}

// Newf 포맷 문자열을 사용하여 새로운 에러를 생성합니다.
func Newf(errType ErrorType, format string, args ...any) error {
	return newAppError(errType, fmt.Sprintf(format, args...), nil)
}

// Wrap err에 분류와 메시지를 덧붙입니다. err가 nil이면 nil을 반환합니다.
func Wrap(err error, errType ErrorType, message string) error {
	if err == nil {
		return nil
	}
	return newAppError(errType, message, err)
}

// Wrapf 포맷 문자열을 사용하는 Wrap
func Wrapf(err error, errType ErrorType, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return newAppError(errType, fmt.Sprintf(format, args...), err)
}

// Is 에러 체인의 AppError 중 하나라도 errType이면 true를 반환합니다.
func Is(err error, errType ErrorType) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if appErr, ok := err.(*AppError); ok && appErr.errType == errType {
			return true
		}
	}
	return false
}

// As errors.As와 같습니다. 호출하는 쪽에서 표준 errors 패키지를 함께 import하지 않도록 제공합니다.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// UnderlyingType 에러 체인에서 가장 안쪽에 위치한 AppError의 ErrorType을 반환합니다.
// 체인에 AppError가 없으면 Unknown을 반환합니다. API 응답 코드 결정에 사용합니다.
func UnderlyingType(err error) ErrorType {
	t := Unknown
	for ; err != nil; err = errors.Unwrap(err) {
		if appErr, ok := err.(*AppError); ok {
			t = appErr.errType
		}
	}
	return t
}

// FromPanic recover()로 회수한 값을 Internal 타입의 AppError로 변환합니다.
// 회수한 값이 error이면 원인으로 보존합니다.
func FromPanic(r any, message string) error {
	if cause, ok := r.(error); ok {
		return newAppError(Internal, message, cause)
	}
	return newAppError(Internal, fmt.Sprintf("%s: %v", message, r), nil)
}
