// Package atomicfile 임시 파일 쓰기, fsync, 이름 변경 순서로 파일을 원자적으로 교체하는 헬퍼를 제공합니다.
package atomicfile

import (
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
)

const component = "atomicfile"

// TempFilePattern 쓰기 중에 생성되는 임시 파일의 이름 패턴입니다.
const TempFilePattern = ".atomic-*.tmp"

// WriteFile data를 filename에 원자적으로 저장합니다.
//
// 저장 도중 프로세스가 종료되어도 filename은 이전 내용 또는 새 내용 중 하나로만 남습니다.
func WriteFile(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.Wrap(err, apperrors.System, "파일 저장 실패: 디렉토리 생성 중 오류가 발생했습니다")
	}

	// 같은 디렉토리 내에 생성해야 rename이 원자적으로 동작합니다.
	tmpFile, err := os.CreateTemp(dir, TempFilePattern)
	if err != nil {
		return apperrors.Wrap(err, apperrors.System, "파일 저장 실패: 임시 파일 생성 중 오류가 발생했습니다")
	}
	tmpPath := tmpFile.Name()

	// Close가 Remove보다 먼저 실행되어야 합니다. (Windows 파일 잠금)
	defer os.Remove(tmpPath)
	defer tmpFile.Close()

	if _, err := tmpFile.Write(data); err != nil {
		return apperrors.Wrap(err, apperrors.System, "파일 저장 실패: 파일 쓰기 중 오류가 발생했습니다")
	}
	if err := tmpFile.Sync(); err != nil {
		return apperrors.Wrap(err, apperrors.System, "파일 저장 실패: 디스크 동기화 중 오류가 발생했습니다")
	}
	if err := tmpFile.Chmod(perm); err != nil {
		return apperrors.Wrap(err, apperrors.System, "파일 저장 실패: 권한 설정 중 오류가 발생했습니다")
	}
	if err := tmpFile.Close(); err != nil {
		return apperrors.Wrap(err, apperrors.System, "파일 저장 실패: 파일 닫기 중 오류가 발생했습니다")
	}

	if err := renameWithRetry(tmpPath, filename); err != nil {
		return apperrors.Wrap(err, apperrors.System, "파일 저장 실패: 파일 이름 변경 중 오류가 발생했습니다")
	}

	// 실패해도 치명적이지 않으므로 에러를 무시합니다.
	if dirFile, err := os.Open(dir); err == nil {
		_ = dirFile.Sync()
		dirFile.Close()
	}

	return nil
}

// renameWithRetry 백신/인덱서가 파일을 잠시 점유하는 환경(Windows)에서 이름 변경을 몇 번 더 시도합니다.
func renameWithRetry(oldPath, newPath string) error {
	const maxRetries = 5
	const retryDelay = 10 * time.Millisecond

	var lastErr error
	for range maxRetries {
		if lastErr = os.Rename(oldPath, newPath); lastErr == nil {
			return nil
		}
		time.Sleep(retryDelay)
	}

	return lastErr
}

// CleanupStale dir에서 olderThan보다 오래된 임시 파일을 삭제합니다. (비정상 종료로 남은 파일 정리)
func CleanupStale(dir string, olderThan time.Duration) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"dir":   dir,
			"error": err,
		}).Warn("임시 파일 정리 중단: 디렉토리 조회 실패")
		return
	}

	threshold := time.Now().Add(-olderThan)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matched, _ := filepath.Match(TempFilePattern, entry.Name()); !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(threshold) {
			continue
		}

		fullPath := filepath.Join(dir, entry.Name())
		if err := os.Remove(fullPath); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"file":  fullPath,
				"error": err,
			}).Warn("임시 파일 삭제 실패")
			continue
		}

		applog.WithComponentAndFields(component, applog.Fields{
			"file": fullPath,
		}).Info("이전 실행에서 남은 임시 파일을 삭제했습니다")
	}
}
