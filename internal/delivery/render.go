package delivery

import (
	"strconv"
	"strings"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/marketplace"
)

const (
	dateLayout     = "02.01.2006"
	fullDateLayout = "02.01.2006 15:04:05"
)

// Render 주문 변수($username, $order_id, $order_title, $price, $date, $full_date)를 치환합니다.
// $product는 재고를 꺼낸 뒤에 별도로 치환되므로 그대로 남습니다.
func Render(tmpl string, order marketplace.Order, now time.Time) string {
	return strings.NewReplacer(
		"$username", order.BuyerUsername,
		"$order_id", order.ID,
		"$order_title", order.Title,
		"$price", strconv.FormatFloat(order.Price, 'f', -1, 64),
		"$full_date", now.Format(fullDateLayout),
		"$date", now.Format(dateLayout),
	).Replace(tmpl)
}

// RenderMessage 채팅 메시지 변수($username, $message_text, $chat_id, $date, $full_date)를 치환합니다.
func RenderMessage(tmpl string, msg marketplace.Message, now time.Time) string {
	return strings.NewReplacer(
		"$username", msg.ChatWith,
		"$message_text", msg.Text,
		"$chat_id", strconv.FormatInt(msg.NodeID, 10),
		"$full_date", now.Format(fullDateLayout),
		"$date", now.Format(dateLayout),
	).Replace(tmpl)
}

func substituteProduct(text, product string) string {
	return strings.ReplaceAll(text, config.ProductPlaceholder, product)
}
