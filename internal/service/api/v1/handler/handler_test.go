package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/blocklist"
	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/deliverytest"
	"github.com/darkkaiser/autodelivery-server/internal/event"
	"github.com/darkkaiser/autodelivery-server/internal/inventory"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/model/response"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Fixtures
// =============================================================================

type recordingEmitter struct {
	mu     sync.Mutex
	events []event.Tagged
	ctxErr error
}

func (r *recordingEmitter) Emit(ctx context.Context, ev event.Tagged) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
	r.ctxErr = ctx.Err()
	return nil
}

type stubLots struct {
	lots        []marketplace.Lot
	refreshedAt time.Time
}

func (s *stubLots) KnownLots() []marketplace.Lot { return s.lots }
func (s *stubLots) RefreshedAt() time.Time      { return s.refreshedAt }

type fixture struct {
	handler   *Handler
	emitter   *recordingEmitter
	configs   *config.Store
	keys      *deliverytest.Keys
	inventory *inventory.Store
	blockList *blocklist.List
	blockPath string
	lots      *stubLots
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	inv, err := inventory.NewStore(t.TempDir())
	require.NoError(t, err)

	blockPath := filepath.Join(t.TempDir(), "block_list.json")

	f := &fixture{
		emitter:   &recordingEmitter{},
		keys:      deliverytest.NewKeys(),
		inventory: inv,
		blockList: blocklist.New(blockPath),
		blockPath: blockPath,
		lots:      &stubLots{},
		configs: config.NewStore(&config.Snapshot{
			Rules: []config.DeliveryRule{{Name: "GTA V", Response: "$product", ProductsFile: "gta.txt"}},
		}),
	}
	f.handler = NewHandler(Deps{
		Emitter:   f.emitter,
		Configs:   f.configs,
		Keys:      f.keys,
		Inventory: f.inventory,
		BlockList: f.blockList,
		Lots:      f.lots,
	})

	return f
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, code, he.Code)
}

// =============================================================================
// Events
// =============================================================================

func TestPublishEventHandler_NewOrder(t *testing.T) {
	f := newFixture(t)

	c, rec := newContext(http.MethodPost, "/api/v1/events",
		`{"kind":"new_order","tag":"abc","order":{"id":"#A1","title":"GTA V key","price":150,"buyer_username":"buyer"}}`)

	require.NoError(t, f.handler.PublishEventHandler(c))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var resp response.AcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "new_order", resp.Kind)
	assert.Equal(t, "abc", resp.Tag)

	require.Len(t, f.emitter.events, 1)
	ev, ok := f.emitter.events[0].(event.NewOrderEvent)
	require.True(t, ok)
	assert.Equal(t, "#A1", ev.Order.ID)
	assert.Equal(t, "buyer", ev.Order.BuyerUsername)
	assert.NoError(t, f.emitter.ctxErr)
}

func TestPublishEventHandler_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"JSON 형식 오류", `{"kind":`},
		{"종류 누락", `{}`},
		{"알 수 없는 종류", `{"kind":"post_start"}`},
		{"메시지 누락", `{"kind":"new_message"}`},
		{"주문 ID 누락", `{"kind":"new_order","order":{"title":"x"}}`},
		{"올리기 결과 누락", `{"kind":"lots_raised"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			c, _ := newContext(http.MethodPost, "/api/v1/events", tt.body)

			assertHTTPError(t, f.handler.PublishEventHandler(c), http.StatusBadRequest)
			assert.Empty(t, f.emitter.events)
		})
	}
}

// =============================================================================
// Delivery Tests
// =============================================================================

func TestIssueDeliveryTestHandler(t *testing.T) {
	f := newFixture(t)

	c, rec := newContext(http.MethodPost, "/api/v1/delivery-tests", `{"lot_name":"GTA V"}`)
	require.NoError(t, f.handler.IssueDeliveryTestHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp DeliveryTestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Key, deliverytest.KeyLength)
	assert.Equal(t, deliverytest.CommandPrefix+" "+resp.Key, resp.Command)

	lotName, ok := f.keys.Consume(resp.Key)
	require.True(t, ok, "발급된 키는 저장소에 등록되어야 합니다")
	assert.Equal(t, "GTA V", lotName)
}

func TestIssueDeliveryTestHandler_UnknownRule(t *testing.T) {
	f := newFixture(t)

	c, _ := newContext(http.MethodPost, "/api/v1/delivery-tests", `{"lot_name":"gta v"}`)

	assertHTTPError(t, f.handler.IssueDeliveryTestHandler(c), http.StatusNotFound)
	assert.Zero(t, f.keys.Len())
}

// =============================================================================
// Inventory
// =============================================================================

func TestInventoryHandlers(t *testing.T) {
	f := newFixture(t)

	// 빈 디렉토리는 빈 배열로 응답합니다.
	c, rec := newContext(http.MethodGet, "/api/v1/inventory", "")
	require.NoError(t, f.handler.ListInventoryHandler(c))
	assert.JSONEq(t, `{"files":[]}`, rec.Body.String())

	c, rec = newContext(http.MethodPost, "/api/v1/inventory", `{"name":"steam"}`)
	require.NoError(t, f.handler.CreateProductsFileHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"name":"steam.txt","count":0}`, rec.Body.String())

	c, rec = newContext(http.MethodPost, "/api/v1/inventory/steam.txt/units", `{"units":["A","","B"]}`)
	c.SetParamNames("name")
	c.SetParamValues("steam.txt")
	require.NoError(t, f.handler.AddUnitsHandler(c))
	assert.JSONEq(t, `{"name":"steam.txt","added":2}`, rec.Body.String())

	c, rec = newContext(http.MethodGet, "/api/v1/inventory", "")
	require.NoError(t, f.handler.ListInventoryHandler(c))
	assert.JSONEq(t, `{"files":[{"name":"steam.txt","count":2}]}`, rec.Body.String())
}

func TestAddUnitsHandler_EmptyUnits(t *testing.T) {
	f := newFixture(t)

	c, _ := newContext(http.MethodPost, "/api/v1/inventory/steam.txt/units", `{"units":[]}`)
	c.SetParamNames("name")
	c.SetParamValues("steam.txt")

	assertHTTPError(t, f.handler.AddUnitsHandler(c), http.StatusBadRequest)
}

func TestDeleteProductsFileHandler(t *testing.T) {
	f := newFixture(t)

	_, err := f.inventory.Create("gta.txt")
	require.NoError(t, err)
	_, err = f.inventory.Create("old.txt")
	require.NoError(t, err)

	t.Run("규칙에서 사용 중인 파일은 삭제할 수 없음", func(t *testing.T) {
		c, _ := newContext(http.MethodDelete, "/api/v1/inventory/gta.txt", "")
		assertHTTPError(t, f.handler.DeleteProductsFileHandler(withParam(c, "name", "gta.txt")), http.StatusConflict)

		_, err := f.inventory.Count("gta.txt")
		assert.NoError(t, err, "파일이 그대로 남아 있어야 합니다")
	})

	t.Run("사용하지 않는 파일 삭제", func(t *testing.T) {
		c, rec := newContext(http.MethodDelete, "/api/v1/inventory/old.txt", "")
		require.NoError(t, f.handler.DeleteProductsFileHandler(withParam(c, "name", "old.txt")))
		assert.Equal(t, http.StatusOK, rec.Code)

		_, err := f.inventory.Count("old.txt")
		assert.True(t, apperrors.Is(err, apperrors.NotFound))
	})

	t.Run("없는 파일", func(t *testing.T) {
		c, _ := newContext(http.MethodDelete, "/api/v1/inventory/none.txt", "")
		err := f.handler.DeleteProductsFileHandler(withParam(c, "name", "none.txt"))
		assert.True(t, apperrors.Is(err, apperrors.NotFound))
	})
}

// =============================================================================
// Rules
// =============================================================================

func TestRuleHandlers_ListAndGet(t *testing.T) {
	f := newFixture(t)

	c, rec := newContext(http.MethodGet, "/api/v1/rules", "")
	require.NoError(t, f.handler.ListRulesHandler(c))
	assert.JSONEq(t, `{"rules":[{"name":"GTA V","response":"$product","products_file":"gta.txt","disable":false,"disable_auto_restore":false,"disable_auto_disable":false}]}`, rec.Body.String())

	c, rec = newContext(http.MethodGet, "/api/v1/rules/GTA%20V", "")
	require.NoError(t, f.handler.GetRuleHandler(withParam(c, "name", "GTA V")))
	assert.Contains(t, rec.Body.String(), `"products_file":"gta.txt"`)

	c, _ = newContext(http.MethodGet, "/api/v1/rules/gta%20v", "")
	assertHTTPError(t, f.handler.GetRuleHandler(withParam(c, "name", "gta v")), http.StatusNotFound)
}

func TestCreateRuleHandler(t *testing.T) {
	f := newFixture(t)

	_, err := f.inventory.Create("keys.txt")
	require.NoError(t, err)

	c, rec := newContext(http.MethodPost, "/api/v1/rules", `{"name":"Steam","response":"Ваш ключ: $product","products_file":"keys.txt"}`)
	require.NoError(t, f.handler.CreateRuleHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rule, ok := f.configs.Load().RuleByName("Steam")
	require.True(t, ok)
	assert.Equal(t, "keys.txt", rule.ProductsFile)

	t.Run("중복 이름", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/api/v1/rules", `{"name":"Steam","response":"x"}`)
		assertHTTPError(t, f.handler.CreateRuleHandler(c), http.StatusConflict)
	})

	t.Run("없는 상품 파일", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/api/v1/rules", `{"name":"Origin","response":"$product","products_file":"none.txt"}`)
		assertHTTPError(t, f.handler.CreateRuleHandler(c), http.StatusBadRequest)
	})

	t.Run("상품 파일이 있는데 $product 없음", func(t *testing.T) {
		c, _ := newContext(http.MethodPost, "/api/v1/rules", `{"name":"Origin","response":"спасибо","products_file":"keys.txt"}`)
		err := f.handler.CreateRuleHandler(c)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))

		_, ok := f.configs.Load().RuleByName("Origin")
		assert.False(t, ok)
	})
}

func TestUpdateRuleHandler(t *testing.T) {
	f := newFixture(t)

	t.Run("플래그 변경", func(t *testing.T) {
		c, rec := newContext(http.MethodPatch, "/api/v1/rules/GTA%20V", `{"disable":true,"disable_auto_restore":true}`)
		require.NoError(t, f.handler.UpdateRuleHandler(withParam(c, "name", "GTA V")))
		assert.Equal(t, http.StatusOK, rec.Code)

		rule, _ := f.configs.Load().RuleByName("GTA V")
		assert.True(t, rule.Disable)
		assert.True(t, rule.DisableAutoRestore)
		assert.False(t, rule.DisableAutoDisable)
		assert.Equal(t, "$product", rule.Response, "지정하지 않은 필드는 유지되어야 합니다")
	})

	t.Run("$product를 빼는 응답 변경은 거부되고 기존 규칙 유지", func(t *testing.T) {
		before := f.configs.Load()

		c, _ := newContext(http.MethodPatch, "/api/v1/rules/GTA%20V", `{"response":"спасибо за покупку"}`)
		err := f.handler.UpdateRuleHandler(withParam(c, "name", "GTA V"))
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))

		assert.Same(t, before, f.configs.Load())
	})

	t.Run("상품 파일 연결 해제 후에는 자유 응답 허용", func(t *testing.T) {
		c, _ := newContext(http.MethodPatch, "/api/v1/rules/GTA%20V", `{"response":"напишите мне","products_file":""}`)
		require.NoError(t, f.handler.UpdateRuleHandler(withParam(c, "name", "GTA V")))

		rule, _ := f.configs.Load().RuleByName("GTA V")
		assert.False(t, rule.HasProductsFile())
		assert.Equal(t, "напишите мне", rule.Response)
	})

	t.Run("없는 규칙", func(t *testing.T) {
		c, _ := newContext(http.MethodPatch, "/api/v1/rules/none", `{"disable":true}`)
		assertHTTPError(t, f.handler.UpdateRuleHandler(withParam(c, "name", "none")), http.StatusNotFound)
	})
}

func TestDeleteRuleHandler(t *testing.T) {
	f := newFixture(t)

	c, _ := newContext(http.MethodDelete, "/api/v1/rules/GTA%20V", "")
	require.NoError(t, f.handler.DeleteRuleHandler(withParam(c, "name", "GTA V")))
	assert.Empty(t, f.configs.Load().Rules)

	c, _ = newContext(http.MethodDelete, "/api/v1/rules/GTA%20V", "")
	assertHTTPError(t, f.handler.DeleteRuleHandler(withParam(c, "name", "GTA V")), http.StatusNotFound)

	// 규칙이 사라지면 파일도 삭제할 수 있습니다.
	_, err := f.inventory.Create("gta.txt")
	require.NoError(t, err)
	c, _ = newContext(http.MethodDelete, "/api/v1/inventory/gta.txt", "")
	assert.NoError(t, f.handler.DeleteProductsFileHandler(withParam(c, "name", "gta.txt")))
}

// =============================================================================
// Lots
// =============================================================================

func TestListLotsHandler(t *testing.T) {
	f := newFixture(t)

	c, rec := newContext(http.MethodGet, "/api/v1/lots", "")
	require.NoError(t, f.handler.ListLotsHandler(c))
	assert.JSONEq(t, `{"lots":[],"refreshed_at":null}`, rec.Body.String())

	f.lots.lots = []marketplace.Lot{{ID: 7, GameID: 3, Title: "GTA V key", Price: 150}}
	f.lots.refreshedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	c, rec = newContext(http.MethodGet, "/api/v1/lots", "")
	require.NoError(t, f.handler.ListLotsHandler(c))
	assert.JSONEq(t, `{"lots":[{"id":7,"game_id":3,"title":"GTA V key","price":150}],"refreshed_at":"2026-01-02T03:04:05Z"}`, rec.Body.String())
}

// =============================================================================
// Block List
// =============================================================================

func TestBlockListHandlers(t *testing.T) {
	f := newFixture(t)

	c, _ := newContext(http.MethodPut, "/api/v1/block-list/spammer", "")
	c.SetParamNames("username")
	c.SetParamValues("spammer")
	require.NoError(t, f.handler.BlockUserHandler(c))
	assert.True(t, f.blockList.Contains("spammer"))

	// 저장된 파일에서 다시 읽어도 유지되어야 합니다.
	reloaded, err := blocklist.Open(f.blockPath)
	require.NoError(t, err)
	assert.True(t, reloaded.Contains("spammer"))

	c, rec := newContext(http.MethodGet, "/api/v1/block-list", "")
	require.NoError(t, f.handler.ListBlockedUsersHandler(c))
	assert.JSONEq(t, `{"users":["spammer"]}`, rec.Body.String())

	c, _ = newContext(http.MethodDelete, "/api/v1/block-list/spammer", "")
	c.SetParamNames("username")
	c.SetParamValues("spammer")
	require.NoError(t, f.handler.UnblockUserHandler(c))
	assert.False(t, f.blockList.Contains("spammer"))

	c, _ = newContext(http.MethodDelete, "/api/v1/block-list/spammer", "")
	c.SetParamNames("username")
	c.SetParamValues("spammer")
	assertHTTPError(t, f.handler.UnblockUserHandler(c), http.StatusNotFound)
}

// =============================================================================
// Validation
// =============================================================================

func TestFormatValidationError(t *testing.T) {
	t.Parallel()

	type sample struct {
		Name  string   `validate:"required" korean:"이름"`
		Units []string `validate:"min=1" korean:"상품 목록"`
	}

	assert.Equal(t, "이름는 필수입니다", FormatValidationError(ValidateRequest(sample{Units: []string{"a"}})))
	assert.Equal(t, "상품 목록는 최소 1개 이상이어야 합니다", FormatValidationError(ValidateRequest(sample{Name: "x", Units: []string{}})))
	assert.Empty(t, FormatValidationError(nil))
}
