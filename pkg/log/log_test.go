package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithComponentAndFields(t *testing.T) {
	fields := Fields{"order_id": "#A1"}

	entry := WithComponentAndFields("delivery", fields)

	assert.Equal(t, "delivery", entry.Data["component"])
	assert.Equal(t, "#A1", entry.Data["order_id"])
	assert.NotContains(t, fields, "component", "입력 맵은 변경되지 않아야 합니다")
}
