package mark

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMarks_Integrity(t *testing.T) {
	t.Parallel()

	seen := make(map[Mark]bool)
	for _, m := range Values() {
		assert.NotEmpty(t, m.String())
		assert.Equal(t, strings.TrimSpace(m.String()), m.String(), "마크에는 공백이 포함되지 않아야 합니다")
		assert.True(t, utf8.ValidString(m.String()))
		assert.False(t, seen[m], "중복된 마크: %s", m)
		seen[m] = true
	}
}

func TestMark_Label(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "📨 Ответить", Reply.Label("Ответить"))
	assert.Equal(t, "plain", Mark("").Label("plain"))
}
