package funpay

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/tidwall/gjson"
)

var (
	reCategoryID = regexp.MustCompile(`/lots/(\d+)/`)
	reOfferID    = regexp.MustCompile(`[?&]id=(\d+)`)
)

// ErrPageStructureChanged 페이지 구조가 변경되어 파싱에 실패했을 때 반환됩니다.
var ErrPageStructureChanged = apperrors.New(apperrors.ParsingFailed, "불러온 페이지의 문서구조가 변경되었습니다. CSS셀렉터를 확인하세요")

func newErrPageStructureChanged(path, selector string) error {
	return apperrors.Wrapf(ErrPageStructureChanged, apperrors.ParsingFailed, "페이지(%s)에서 요소(%s)를 찾을 수 없습니다", path, selector)
}

// parseAppData body 태그의 data-app-data 속성(JSON)을 읽습니다.
func parseAppData(doc *goquery.Document) (gjson.Result, error) {
	raw, ok := doc.Find("body").Attr("data-app-data")
	if !ok || !gjson.Valid(raw) {
		return gjson.Result{}, newErrPageStructureChanged("/", "body[data-app-data]")
	}

	return gjson.Parse(raw), nil
}

// parseChatContacts 채팅 목록에서 사용자명 → 채팅 ID 매핑을 추출합니다.
func parseChatContacts(doc *goquery.Document) map[string]int64 {
	contacts := make(map[string]int64)

	doc.Find("a.contact-item").Each(func(_ int, s *goquery.Selection) {
		id, err := strconv.ParseInt(strings.TrimSpace(s.AttrOr("data-id", "")), 10, 64)
		if err != nil {
			return
		}

		name := strings.TrimSpace(s.Find(".media-user-name").First().Text())
		if name == "" {
			return
		}

		contacts[name] = id
	})

	return contacts
}

// parseProfileLots 프로필 페이지의 카테고리별 상품 목록을 추출합니다.
func parseProfileLots(doc *goquery.Document) []marketplace.Lot {
	var lots []marketplace.Lot

	doc.Find("div.offer").Each(func(_ int, offer *goquery.Selection) {
		href := offer.Find(".offer-list-title a").First().AttrOr("href", "")
		m := reCategoryID.FindStringSubmatch(href)
		if m == nil {
			return
		}
		gameID, _ := strconv.ParseInt(m[1], 10, 64)

		offer.Find("a.tc-item").Each(func(_ int, item *goquery.Selection) {
			m := reOfferID.FindStringSubmatch(item.AttrOr("href", ""))
			if m == nil {
				return
			}
			lotID, _ := strconv.ParseInt(m[1], 10, 64)

			price, _ := strconv.ParseFloat(item.Find(".tc-price").AttrOr("data-s", "0"), 64)

			lots = append(lots, marketplace.Lot{
				ID:     lotID,
				GameID: gameID,
				Title:  strings.TrimSpace(item.Find(".tc-desc-text").Text()),
				Price:  price,
			})
		})
	})

	return lots
}

// parseFormFields 편집 양식의 입력 요소 값을 이름별로 추출합니다.
// 체크되지 않은 체크박스는 브라우저와 동일하게 제외됩니다.
func parseFormFields(form *goquery.Selection) map[string]string {
	fields := make(map[string]string)

	form.Find("input[name]").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		switch strings.ToLower(s.AttrOr("type", "text")) {
		case "checkbox", "radio":
			if _, checked := s.Attr("checked"); !checked {
				return
			}
			fields[name] = s.AttrOr("value", "on")
		case "submit", "button":
		default:
			fields[name] = s.AttrOr("value", "")
		}
	})

	form.Find("textarea[name]").Each(func(_ int, s *goquery.Selection) {
		fields[s.AttrOr("name", "")] = s.Text()
	})

	form.Find("select[name]").Each(func(_ int, s *goquery.Selection) {
		option := s.Find("option[selected]").First()
		if option.Length() == 0 {
			option = s.Find("option").First()
		}
		fields[s.AttrOr("name", "")] = option.AttrOr("value", "")
	})

	return fields
}

// parseAccount 메인 페이지 헤더에서 계정 정보를 추출합니다.
func parseAccount(doc *goquery.Document, appData gjson.Result) marketplace.Account {
	balance, currency := parseMoney(doc.Find(".badge-balance").First().Text())
	activeOrders, _ := strconv.Atoi(strings.TrimSpace(doc.Find(".badge-trade").First().Text()))

	return marketplace.Account{
		ID:           appData.Get("userId").Int(),
		Username:     strings.TrimSpace(doc.Find(".user-link-name").First().Text()),
		Balance:      balance,
		Currency:     currency,
		ActiveOrders: activeOrders,
	}
}

// parseMoney "1 234.56 ₽" 형식의 문자열을 금액과 통화 기호로 분리합니다.
func parseMoney(s string) (float64, string) {
	var digits, currency strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsDigit(r) || r == '.':
			digits.WriteRune(r)
		case r == ',':
			digits.WriteRune('.')
		case unicode.IsSpace(r):
		default:
			currency.WriteRune(r)
		}
	}

	amount, _ := strconv.ParseFloat(digits.String(), 64)

	return amount, currency.String()
}
