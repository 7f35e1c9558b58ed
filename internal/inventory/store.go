// Package inventory 디지털 상품 재고를 텍스트 파일로 관리합니다.
//
// 파일의 한 줄이 상품 1단위이며, 단위 안의 줄바꿈은 두 글자 `\n`으로 저장됩니다.
// 맨 윗줄이 가장 오래된 단위로 Take는 맨 위에서 꺼내고 Return은 맨 끝에 다시 붙입니다.
package inventory

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/pkg/atomicfile"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/darkkaiser/autodelivery-server/pkg/concurrency"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/samber/lo"
)

const component = "inventory"

// FileExt 상품 파일 확장자
const FileExt = ".txt"

// FileInfo 상품 파일 이름과 남은 재고 수
type FileInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Store 디렉토리 하나에 속한 상품 파일들을 관리합니다.
type Store struct {
	dir string

	// locks 파일별 뮤텍스. 키는 소문자로 정규화된 절대 경로입니다.
	locks *concurrency.KeyedMutex[string]
}

// NewStore dir을 저장 디렉토리로 사용하는 Store를 생성합니다. 디렉토리가 없으면 생성합니다.
func NewStore(dir string) (*Store, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, newErrReadFailed(err, dir)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, newErrReadFailed(err, absDir)
	}

	atomicfile.CleanupStale(absDir, time.Hour)

	return &Store{
		dir:   absDir,
		locks: concurrency.NewKeyedMutex[string](),
	}, nil
}

// Dir 저장 디렉토리의 절대 경로를 반환합니다.
func (s *Store) Dir() string {
	return s.dir
}

// Take 가장 오래된 단위 하나를 꺼내 반환합니다. 꺼낸 단위는 파일에서 제거됩니다.
func (s *Store) Take(name string) (string, error) {
	path, err := s.resolveSafePath(name)
	if err != nil {
		return "", err
	}

	var unit string
	err = s.locks.WithLock(lockKey(path), func() error {
		units, err := readUnits(path, name)
		if err != nil {
			return err
		}
		if len(units) == 0 {
			return ErrOutOfStock
		}

		if err := writeUnits(path, units[1:]); err != nil {
			return err
		}

		unit = unescape(units[0])
		return nil
	})
	if err != nil {
		return "", err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"file": name,
	}).Debug("재고 1단위 출고")

	return unit, nil
}

// Return Take로 꺼낸 단위를 파일 끝에 되돌립니다. 그 사이 파일이 사라졌다면 해당 단위만 담은 파일을 새로 만듭니다.
func (s *Store) Return(name, unit string) error {
	path, err := s.resolveSafePath(name)
	if err != nil {
		return err
	}

	err = s.locks.WithLock(lockKey(path), func() error {
		units, err := readUnits(path, name)
		if err != nil && !apperrors.Is(err, apperrors.NotFound) {
			return err
		}
		return writeUnits(path, append(units, escape(unit)))
	})
	if err != nil {
		return err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"file": name,
	}).Info("재고 1단위 반환")

	return nil
}

// Count 남은 재고 수를 반환합니다. 빈 줄은 재고로 세지 않습니다.
func (s *Store) Count(name string) (int, error) {
	path, err := s.resolveSafePath(name)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.locks.WithLock(lockKey(path), func() error {
		units, err := readUnits(path, name)
		count = len(units)
		return err
	})

	return count, err
}

// Add units를 파일 끝에 추가하고 추가된 단위 수를 반환합니다.
// 공백뿐인 단위는 버려지며, 단위 안의 줄바꿈은 `\n`으로 저장됩니다.
func (s *Store) Add(name string, units []string) (int, error) {
	path, err := s.resolveSafePath(name)
	if err != nil {
		return 0, err
	}

	added := lo.FilterMap(units, func(u string, _ int) (string, bool) {
		u = strings.TrimRight(u, "\r\n")
		return escape(u), strings.TrimSpace(u) != ""
	})
	if len(added) == 0 {
		return 0, nil
	}

	err = s.locks.WithLock(lockKey(path), func() error {
		existing, err := readUnits(path, name)
		if err != nil {
			return err
		}
		return writeUnits(path, append(existing, added...))
	})
	if err != nil {
		return 0, err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"file":  name,
		"added": len(added),
	}).Info("재고 추가")

	return len(added), nil
}

// Create 빈 상품 파일을 생성하고 최종 파일 이름을 반환합니다. 확장자가 없으면 ".txt"를 붙입니다.
func (s *Store) Create(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(strings.ToLower(name), FileExt) {
		name += FileExt
	}

	path, err := s.resolveSafePath(name)
	if err != nil {
		return "", err
	}

	err = s.locks.WithLock(lockKey(path), func() error {
		if _, err := os.Stat(path); err == nil {
			return newErrFileAlreadyExists(name)
		}
		return atomicfile.WriteFile(path, nil, 0644)
	})
	if err != nil {
		return "", err
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"file": name,
	}).Info("상품 파일 생성")

	return name, nil
}

// Delete 상품 파일을 삭제합니다. 규칙에서 사용 중인지 여부는 호출하는 쪽이 확인해야 합니다.
func (s *Store) Delete(name string) error {
	path, err := s.resolveSafePath(name)
	if err != nil {
		return err
	}

	return s.locks.WithLock(lockKey(path), func() error {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return newErrFileNotFound(name)
			}
			return newErrReadFailed(err, name)
		}
		return nil
	})
}

// List 저장 디렉토리의 상품 파일 목록을 이름순으로 반환합니다.
func (s *Store) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, newErrReadFailed(err, s.dir)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), FileExt) {
			continue
		}

		count, err := s.Count(entry.Name())
		if err != nil {
			return nil, err
		}
		files = append(files, FileInfo{Name: entry.Name(), Count: count})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return files, nil
}

// resolveSafePath 파일 이름을 저장 디렉토리 하위의 절대 경로로 변환합니다.
// 디렉토리 구분자나 상위 경로를 포함한 이름은 거부됩니다.
func (s *Store) resolveSafePath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		applog.WithComponentAndFields(component, applog.Fields{
			"file":     name,
			"base_dir": s.dir,
		}).Warn("상품 파일 경로 차단: 경로 이탈 시도 감지")

		return "", ErrPathTraversalDetected
	}

	path := filepath.Join(s.dir, name)

	rel, err := filepath.Rel(s.dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", ErrPathTraversalDetected
	}

	return path, nil
}

func lockKey(path string) string {
	return strings.ToLower(path)
}

func readUnits(path, name string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newErrFileNotFound(name)
		}
		return nil, newErrReadFailed(err, name)
	}

	lines := strings.Split(string(data), "\n")

	return lo.FilterMap(lines, func(line string, _ int) (string, bool) {
		line = strings.TrimRight(line, "\r")
		return line, strings.TrimSpace(line) != ""
	}), nil
}

func writeUnits(path string, units []string) error {
	var content string
	if len(units) > 0 {
		content = strings.Join(units, "\n") + "\n"
	}
	return atomicfile.WriteFile(path, []byte(content), 0644)
}

func escape(unit string) string {
	unit = strings.ReplaceAll(unit, "\r\n", "\n")
	return strings.ReplaceAll(unit, "\n", `\n`)
}

func unescape(unit string) string {
	return strings.ReplaceAll(unit, `\n`, "\n")
}
