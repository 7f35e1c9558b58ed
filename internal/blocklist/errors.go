package blocklist

import (
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
)

func newErrLoadFailed(err error, path string) error {
	return apperrors.Wrapf(err, apperrors.System, "차단 목록 파일(%s)을 읽을 수 없습니다", path)
}

func newErrCorrupted(err error, path string) error {
	return apperrors.Wrapf(err, apperrors.ParsingFailed, "차단 목록 파일(%s)의 형식이 올바르지 않습니다", path)
}
