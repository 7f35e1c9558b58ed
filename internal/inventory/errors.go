package inventory

import (
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
)

var (
	// ErrOutOfStock 상품 파일에 남은 재고가 없을 때 반환됩니다.
	ErrOutOfStock = apperrors.New(apperrors.OutOfStock, "상품 파일에 남은 재고가 없습니다")

	// ErrPathTraversalDetected 상품 파일 이름이 저장 디렉토리를 벗어나려 할 때 반환됩니다.
	ErrPathTraversalDetected = apperrors.New(apperrors.InvalidInput, "보안 정책 위반: 허용되지 않은 경로 접근 시도로 인해 요청이 차단되었습니다")
)

func newErrFileNotFound(name string) error {
	return apperrors.Newf(apperrors.NotFound, "상품 파일(%s)이 존재하지 않습니다", name)
}

func newErrFileAlreadyExists(name string) error {
	return apperrors.Newf(apperrors.Conflict, "상품 파일(%s)이 이미 존재합니다", name)
}

func newErrReadFailed(err error, name string) error {
	return apperrors.Wrapf(err, apperrors.System, "상품 파일(%s)을 읽는 중 오류가 발생했습니다", name)
}
