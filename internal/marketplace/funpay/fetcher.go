package funpay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// maxResponseBytes 응답 본문의 최대 허용 크기입니다 (10MB).
const maxResponseBytes = 10 * 1024 * 1024

// Fetcher HTTP 요청을 수행하는 인터페이스
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// sessionFetcher 모든 요청에 세션 쿠키와 User-Agent를 설정하고, 초당 요청 수를 제한합니다.
type sessionFetcher struct {
	delegate Fetcher
	limiter  *rate.Limiter

	userAgent     string
	sessionCookie string
}

func newSessionFetcher(delegate Fetcher, rps float64, userAgent, sessionCookie string) *sessionFetcher {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &sessionFetcher{
		delegate:      delegate,
		limiter:       rate.NewLimiter(limit, 1),
		userAgent:     userAgent,
		sessionCookie: sessionCookie,
	}
}

func (f *sessionFetcher) Do(req *http.Request) (*http.Response, error) {
	if err := f.limiter.Wait(req.Context()); err != nil {
		return nil, apperrors.Wrap(err, apperrors.Timeout, "요청 속도 제한 대기 중 취소되었습니다")
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: "golden_key", Value: f.sessionCookie})
	}

	resp, err := f.delegate.Do(req)
	if err != nil {
		return nil, err
	}

	resp.Body = http.MaxBytesReader(nil, resp.Body, maxResponseBytes)

	return resp, nil
}

// loggingFetcher HTTP 요청의 메서드, 경로, 상태 코드, 소요 시간을 로그로 남깁니다.
type loggingFetcher struct {
	delegate Fetcher
}

func (f *loggingFetcher) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := f.delegate.Do(req)

	fields := applog.Fields{
		"method":   req.Method,
		"url":      redactURL(req.URL),
		"duration": time.Since(start).String(),
	}
	if resp != nil {
		fields["status_code"] = resp.StatusCode
	}

	if err != nil {
		fields["error"] = err.Error()
		applog.WithComponentAndFields(component, fields).Error("HTTP 요청 실패")
		return resp, err
	}

	applog.WithComponentAndFields(component, fields).Debug("HTTP 요청 완료")

	return resp, nil
}

// redactURL 쿼리 문자열을 제거한 URL을 반환합니다.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	clone := *u
	clone.User = nil
	if clone.RawQuery != "" {
		clone.RawQuery = "***"
	}

	return clone.String()
}

// checkResponseStatus HTTP 응답 상태 코드를 도메인 에러로 변환합니다.
func checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	errType := apperrors.ExecutionFailed
	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		errType = apperrors.Unavailable
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		errType = apperrors.Unauthorized
	case resp.StatusCode == http.StatusNotFound:
		errType = apperrors.NotFound
	}

	return apperrors.Newf(errType, "HTTP 요청이 실패했습니다. 상태 코드: %s", resp.Status)
}

// fetchHTMLDocument GET 요청으로 HTML 문서를 가져와 goquery.Document로 파싱합니다.
// 비 UTF-8 인코딩 페이지는 Content-Type 헤더를 기준으로 UTF-8로 변환합니다.
func fetchHTMLDocument(ctx context.Context, f Fetcher, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "HTTP 요청 생성에 실패했습니다")
	}

	resp, err := f.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("HTML 페이지(%s) 요청 중 에러가 발생했습니다", req.URL.Path))
	}
	defer resp.Body.Close()

	if err := checkResponseStatus(resp); err != nil {
		return nil, err
	}

	utf8Reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "페이지의 인코딩 변환이 실패하였습니다")
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "불러온 페이지의 HTML 파싱이 실패하였습니다")
	}

	return doc, nil
}

// postForm AJAX 형식의 폼 요청을 보내고 JSON 응답 본문을 반환합니다.
func postForm(ctx context.Context, f Fetcher, rawURL string, form url.Values) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return gjson.Result{}, apperrors.Wrap(err, apperrors.Internal, "HTTP 요청 생성에 실패했습니다")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")

	resp, err := f.Do(req)
	if err != nil {
		return gjson.Result{}, apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("API(%s) 요청 전송 중 에러가 발생했습니다", req.URL.Path))
	}
	defer resp.Body.Close()

	if err := checkResponseStatus(resp); err != nil {
		return gjson.Result{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return gjson.Result{}, apperrors.Newf(apperrors.ExecutionFailed, "응답 본문이 허용 크기(%d bytes)를 초과했습니다", maxBytesErr.Limit)
		}
		return gjson.Result{}, apperrors.Wrap(err, apperrors.Unavailable, "응답 본문을 읽는 중 에러가 발생했습니다")
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, apperrors.Newf(apperrors.ParsingFailed, "API(%s) 응답이 올바른 JSON 형식이 아닙니다", req.URL.Path)
	}

	return gjson.ParseBytes(body), nil
}
