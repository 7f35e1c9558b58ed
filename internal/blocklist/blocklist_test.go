package blocklist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/darkkaiser/autodelivery-server/internal/config"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// List
// =============================================================================

func TestList_AddRemoveContains(t *testing.T) {
	t.Parallel()

	l := New("")

	assert.True(t, l.Add("spammer"))
	assert.False(t, l.Add("spammer"), "중복 추가는 false를 반환해야 합니다")
	assert.False(t, l.Add(""))
	assert.True(t, l.Contains("spammer"))
	assert.False(t, l.Contains("Spammer"))

	assert.True(t, l.Remove("spammer"))
	assert.False(t, l.Remove("spammer"))
	assert.False(t, l.Contains("spammer"))
}

func TestList_SaveAndLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache", "block_list.json")

	l := New(path)
	l.Add("zed")
	l.Add("alice")
	require.NoError(t, l.Save())

	reloaded, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "zed"}, reloaded.Users())
}

func TestList_Load_MissingFile(t *testing.T) {
	t.Parallel()

	l, err := Open(filepath.Join(t.TempDir(), "absent.json"))

	require.NoError(t, err)
	assert.Empty(t, l.Users())
}

func TestList_Load_Corrupted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "block_list.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Open(path)

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
}

// =============================================================================
// Gates
// =============================================================================

func TestGates_AreIndependent(t *testing.T) {
	t.Parallel()

	l := New("")
	l.Add("buyer")

	all := []Gate{GateDelivery, GateResponse, GateNewMessageNotification, GateNewOrderNotification, GateCommandNotification}

	for _, on := range all {
		gates := Gates{}
		switch on {
		case GateDelivery:
			gates.Delivery = true
		case GateResponse:
			gates.Response = true
		case GateNewMessageNotification:
			gates.NewMessageNotification = true
		case GateNewOrderNotification:
			gates.NewOrderNotification = true
		case GateCommandNotification:
			gates.CommandNotification = true
		}

		for _, gate := range all {
			assert.Equal(t, gate == on, l.Blocks(gates, gate, "buyer"), "on=%d gate=%d", on, gate)
			assert.False(t, l.Blocks(gates, gate, "stranger"), "차단되지 않은 사용자는 막히지 않아야 합니다")
		}
	}
}

func TestGatesFromConfig(t *testing.T) {
	t.Parallel()

	gates := GatesFromConfig(config.BlockListConfig{
		BlockDelivery:            true,
		BlockCommandNotification: true,
	})

	assert.Equal(t, Gates{Delivery: true, CommandNotification: true}, gates)
}
