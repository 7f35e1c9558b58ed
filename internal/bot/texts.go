package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
	"github.com/darkkaiser/autodelivery-server/internal/pkg/mark"
	"github.com/darkkaiser/autodelivery-server/internal/service/notification"
	"github.com/darkkaiser/autodelivery-server/pkg/strutil"
)

// 운영자 알림 문구
const (
	textNewMessage = "Сообщение в переписке <a href=\"%s/chat/?node=%d\">%s</a>.\n\n<b><i>%s:</i></b> %s"

	textNewOrder = "<b>Новый заказ</b>  <code>%s</code>\n\n" +
		"<b><i>Покупатель:</i></b>  <code>%s</code>\n" +
		"<b><i>Сумма:</i></b>  <code>%s</code>\n" +
		"<b><i>Лот:</i></b>  <code>%s</code>"

	textCommandDefault = "Пользователь %s ввел команду \"%s\"."

	textLotsRaised = "Поднял категории: %s. (ID игры: %d)\nОтвет FunPay: %sПопробую еще раз через %s."

	textDeliveryErrored   = "Произошла ошибка при выдаче товара для ордера <code>%s</code>.\nОшибка: %s"
	textDeliverySucceeded = "Успешно выдал товар для ордера <code>%s</code>.\n\n----- ТОВАР -----\n%s"
	textDeliveryBlocked   = "Пользователь %s находится в ЧС и включена блокировка авто-выдачи."

	textBotStarted = "<b><u>Бот запущен!</u></b>\n\n" +
		"<b><i>Аккаунт:</i></b>  <code>%s</code> | <code>%d</code>\n" +
		"<b><i>Баланс:</i></b> <code>%s%s</code>\n" +
		"<b><i>Незавершенных ордеров:</i></b>  <code>%d</code>"
)

// 알림 키보드 버튼 문구
var (
	buttonReply     = mark.Reply.Label("Ответить")
	buttonRefund    = mark.Refund.Label("Вернуть деньги")
	buttonOrderPage = mark.Link.Label("Открыть страницу заказа")
)

// 마켓플레이스 시스템 메시지(환불/결제/리뷰/완료 안내)
var systemMessageMatcher = strutil.NewKeywordMatcher([]string{
	"Покупатель|Продавец",
	"вернул деньги|оплатил заказ|написал отзыв|подтвердил успешное выполнение заказа",
}, nil)

func isSystemMessage(text string) bool {
	return systemMessageMatcher.Match(text)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func newMessageText(baseURL string, msg marketplace.Message) string {
	who := html.EscapeString(msg.ChatWith)
	return fmt.Sprintf(textNewMessage, baseURL, msg.NodeID, who, who, html.EscapeString(msg.Text))
}

func replyKeyboard(nodeID int64) *notification.Keyboard {
	return notification.NewKeyboard(
		notification.Row(notification.CallbackButton(buttonReply, fmt.Sprintf("to_node:%d", nodeID))),
	)
}

func newOrderText(order marketplace.Order) string {
	return fmt.Sprintf(textNewOrder,
		html.EscapeString(order.ID),
		html.EscapeString(order.BuyerUsername),
		formatPrice(order.Price),
		html.EscapeString(order.Title),
	)
}

// newOrderKeyboard 환불 요청과 주문 페이지 버튼. 구매자 채팅 ID를 알면 답장 버튼도 추가합니다.
func newOrderKeyboard(baseURL string, order marketplace.Order, nodeID int64) *notification.Keyboard {
	id := order.ShortID()
	kb := notification.NewKeyboard(
		notification.Row(notification.CallbackButton(buttonRefund, "refund_request:"+id)),
		notification.Row(notification.URLButton(buttonOrderPage, fmt.Sprintf("%s/orders/%s/", baseURL, id))),
	)
	if nodeID > 0 {
		kb.Rows = append(kb.Rows, notification.Row(notification.CallbackButton(buttonReply, fmt.Sprintf("to_node:%d", nodeID))))
	}
	return kb
}

func commandDefaultText(chatWith, command string) string {
	return fmt.Sprintf(textCommandDefault, html.EscapeString(chatWith), html.EscapeString(command))
}

func lotsRaisedText(raise marketplace.RaiseResponse) string {
	names := make([]string, len(raise.RaisedCategoryNames))
	for i, n := range raise.RaisedCategoryNames {
		names[i] = "\"" + html.EscapeString(n) + "\""
	}
	return fmt.Sprintf(textLotsRaised, strings.Join(names, ", "), raise.GameID, html.EscapeString(raise.Response), formatWait(raise.Wait))
}

// formatWait 대기 시간을 "1h 2m 3s" 형식으로 표시합니다. 0인 단위는 생략합니다.
func formatWait(d time.Duration) string {
	total := int64(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}

func deliveryText(orderID, text string, errored bool) string {
	if errored {
		return fmt.Sprintf(textDeliveryErrored, html.EscapeString(orderID), html.EscapeString(text))
	}
	return fmt.Sprintf(textDeliverySucceeded, html.EscapeString(orderID), html.EscapeString(text))
}

func deliveryBlockedText(buyer string) string {
	return fmt.Sprintf(textDeliveryBlocked, html.EscapeString(buyer))
}

func botStartedText(account marketplace.Account) string {
	return fmt.Sprintf(textBotStarted,
		html.EscapeString(account.Username),
		account.ID,
		formatPrice(account.Balance),
		html.EscapeString(account.Currency),
		account.ActiveOrders,
	)
}
