package cronx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{"6필드 - 30분 간격", "0 */30 * * * *", false},
		{"6필드 - 범위와 요일", "0 0-30/5 9-17 * * MON-FRI", false},
		{"앞뒤 공백 허용", " 0 * * * * * ", false},
		{"Descriptor - @daily", "@daily", false},
		{"Descriptor - @every", "@every 10m", false},
		{"5필드는 미지원", "*/5 * * * *", true},
		{"빈 문자열", "   ", true},
		{"잘못된 값", "invalid", true},
		{"범위 초과", "61 * * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStandardParser_Next(t *testing.T) {
	t.Parallel()

	schedule, err := StandardParser().Parse("30 * * * * *")
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, base.Add(30*time.Second), schedule.Next(base))
}
