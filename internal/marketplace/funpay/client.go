// Package funpay 마켓플레이스 웹 사이트를 대상으로 marketplace.Client를 구현합니다.
//
// 세션 쿠키는 외부에서 발급받아 설정 파일로 전달되며, 이 패키지는 로그인/갱신을 수행하지 않습니다.
package funpay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
)

const component = "marketplace.funpay"

const (
	// nodeCacheTTL 사용자명 → 채팅 ID 매핑의 캐시 유지 시간
	nodeCacheTTL = time.Hour
)

// Client 마켓플레이스 웹 클라이언트
type Client struct {
	baseURL string
	fetcher Fetcher

	nodeCache *cache.Cache

	csrfMu    sync.Mutex
	csrfToken string
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ marketplace.Client = (*Client)(nil)

// New 계정 설정으로 Client를 생성합니다.
func New(cfg config.AccountConfig) *Client {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	return newClient(cfg.BaseURL, &loggingFetcher{
		delegate: newSessionFetcher(httpClient, cfg.RequestsPerSecond, cfg.UserAgent, cfg.SessionCookie),
	})
}

func newClient(baseURL string, f Fetcher) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		fetcher:   f,
		nodeCache: cache.New(nodeCacheTTL, 2*nodeCacheTTL),
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// SendMessage 채팅(nodeID)에 메시지를 전송합니다.
func (c *Client) SendMessage(ctx context.Context, nodeID int64, text string) error {
	csrf, err := c.csrf(ctx)
	if err != nil {
		return err
	}

	request, err := json.Marshal(map[string]any{
		"action": "chat_message",
		"data": map[string]any{
			"node":         nodeID,
			"last_message": -1,
			"content":      text,
		},
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "메시지 전송 요청 생성에 실패했습니다")
	}

	result, err := postForm(ctx, c.fetcher, c.url("/runner/"), url.Values{
		"objects":    {"[]"},
		"request":    {string(request)},
		"csrf_token": {csrf},
	})
	if err != nil {
		c.resetCSRF()
		return err
	}

	if errMsg := result.Get("response.error").String(); errMsg != "" {
		return apperrors.Newf(apperrors.ExecutionFailed, "메시지 전송이 거부되었습니다: %s", errMsg)
	}
	if !result.Get("response").Exists() {
		return apperrors.New(apperrors.ParsingFailed, "메시지 전송 응답에 response 필드가 없습니다")
	}

	return nil
}

// GetNodeIDByUsername 채팅 목록에서 사용자명과 일치하는 채팅 ID를 찾습니다.
func (c *Client) GetNodeIDByUsername(ctx context.Context, username string) (int64, error) {
	key := cases.Fold().String(username)
	if v, ok := c.nodeCache.Get(key); ok {
		return v.(int64), nil
	}

	doc, err := fetchHTMLDocument(ctx, c.fetcher, c.url("/chat/"))
	if err != nil {
		return 0, err
	}

	for name, nodeID := range parseChatContacts(doc) {
		c.nodeCache.SetDefault(cases.Fold().String(name), nodeID)
	}

	v, ok := c.nodeCache.Get(key)
	if !ok {
		return 0, apperrors.Newf(apperrors.NotFound, "사용자(%s)와의 채팅을 찾을 수 없습니다", username)
	}

	return v.(int64), nil
}

// ListActiveLots 판매자 프로필 페이지에 노출 중인 상품 목록을 조회합니다.
func (c *Client) ListActiveLots(ctx context.Context, userID int64) ([]marketplace.Lot, error) {
	doc, err := fetchHTMLDocument(ctx, c.fetcher, c.url(fmt.Sprintf("/users/%d/", userID)))
	if err != nil {
		return nil, err
	}

	if doc.Find(".profile-data, .profile").Length() == 0 {
		return nil, newErrPageStructureChanged("/users/", ".profile")
	}

	return parseProfileLots(doc), nil
}

// GetLotInfo 상품 편집 양식을 조회합니다.
func (c *Client) GetLotInfo(ctx context.Context, lotID, gameID int64) (marketplace.LotInfo, error) {
	q := url.Values{"node": {strconv.FormatInt(gameID, 10)}, "offer": {strconv.FormatInt(lotID, 10)}}

	doc, err := fetchHTMLDocument(ctx, c.fetcher, c.url("/lots/offerEdit?"+q.Encode()))
	if err != nil {
		return marketplace.LotInfo{}, err
	}

	form := doc.Find("form.form-offer-editor").First()
	if form.Length() == 0 {
		return marketplace.LotInfo{}, newErrPageStructureChanged("/lots/offerEdit", "form.form-offer-editor")
	}

	fields := parseFormFields(form)

	return marketplace.LotInfo{
		LotID:  lotID,
		GameID: gameID,
		Fields: fields,
		Active: fields["active"] == "on",
	}, nil
}

// SaveLot 상품 편집 양식을 저장합니다.
func (c *Client) SaveLot(ctx context.Context, info marketplace.LotInfo, active bool) error {
	csrf, err := c.csrf(ctx)
	if err != nil {
		return err
	}

	form := url.Values{}
	for name, value := range info.Fields {
		form.Set(name, value)
	}
	form.Set("offer_id", strconv.FormatInt(info.LotID, 10))
	form.Set("node_id", strconv.FormatInt(info.GameID, 10))
	form.Set("csrf_token", csrf)
	if active {
		form.Set("active", "on")
	} else {
		form.Del("active")
	}

	result, err := postForm(ctx, c.fetcher, c.url("/lots/offerSave"), form)
	if err != nil {
		c.resetCSRF()
		return err
	}

	if result.Get("done").Bool() {
		return nil
	}

	reason := result.Get("error").String()
	if reason == "" {
		reason = strings.Join(lo.Map(result.Get("errors").Array(), func(r gjson.Result, _ int) string { return r.String() }), ", ")
	}

	return apperrors.Newf(apperrors.ExecutionFailed, "상품(%d) 저장이 거부되었습니다: %s", info.LotID, reason)
}

// GetAccount 메인 페이지에서 판매자 계정 요약 정보를 읽어옵니다.
func (c *Client) GetAccount(ctx context.Context) (marketplace.Account, error) {
	doc, err := fetchHTMLDocument(ctx, c.fetcher, c.url("/"))
	if err != nil {
		return marketplace.Account{}, err
	}

	appData, err := parseAppData(doc)
	if err != nil {
		return marketplace.Account{}, err
	}
	if appData.Get("userId").Int() == 0 {
		return marketplace.Account{}, apperrors.New(apperrors.Unauthorized, "세션이 유효하지 않습니다 (userId 없음)")
	}

	c.storeCSRF(appData.Get("csrf-token").String())

	return parseAccount(doc, appData), nil
}

// csrf 저장된 CSRF 토큰을 반환합니다. 없으면 메인 페이지에서 새로 읽어옵니다.
func (c *Client) csrf(ctx context.Context) (string, error) {
	c.csrfMu.Lock()
	token := c.csrfToken
	c.csrfMu.Unlock()

	if token != "" {
		return token, nil
	}

	doc, err := fetchHTMLDocument(ctx, c.fetcher, c.url("/"))
	if err != nil {
		return "", err
	}

	appData, err := parseAppData(doc)
	if err != nil {
		return "", err
	}

	token = appData.Get("csrf-token").String()
	if token == "" {
		return "", apperrors.New(apperrors.Unauthorized, "CSRF 토큰을 찾을 수 없습니다")
	}
	c.storeCSRF(token)

	return token, nil
}

func (c *Client) storeCSRF(token string) {
	if token == "" {
		return
	}

	c.csrfMu.Lock()
	c.csrfToken = token
	c.csrfMu.Unlock()
}

func (c *Client) resetCSRF() {
	c.csrfMu.Lock()
	c.csrfToken = ""
	c.csrfMu.Unlock()

	applog.WithComponent(component).Debug("CSRF 토큰 초기화")
}
