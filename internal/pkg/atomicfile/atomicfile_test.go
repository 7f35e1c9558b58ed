package atomicfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	filename := filepath.Join(dir, "nested", "data.txt")

	require.NoError(t, WriteFile(filename, []byte("first"), 0644))
	require.NoError(t, WriteFile(filename, []byte("second"), 0644))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// 임시 파일이 남지 않아야 합니다.
	entries, err := os.ReadDir(filepath.Dir(filename))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCleanupStale(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	stale := filepath.Join(dir, ".atomic-old.tmp")
	fresh := filepath.Join(dir, ".atomic-new.tmp")
	other := filepath.Join(dir, "keep.txt")
	for _, f := range []string{stale, fresh, other} {
		require.NoError(t, os.WriteFile(f, []byte("x"), 0644))
	}

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(other, old, old))

	CleanupStale(dir, time.Hour)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh, "최근 임시 파일은 사용 중일 수 있으므로 유지되어야 합니다")
	assert.FileExists(t, other)
}
