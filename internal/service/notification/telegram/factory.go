package telegram

import (
	"github.com/darkkaiser/autodelivery-server/internal/config"
	"github.com/darkkaiser/autodelivery-server/internal/metrics"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// New 설정으로 텔레그램 봇에 연결하고 Relay를 생성합니다.
func New(cfg config.TelegramConfig, m *metrics.Metrics) (*Relay, error) {
	if !cfg.Enabled() {
		return nil, apperrors.New(apperrors.InvalidInput, "텔레그램 봇 토큰 또는 채팅 ID가 설정되지 않았습니다")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, "텔레그램 봇에 연결할 수 없습니다")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"bot_username": bot.Self.UserName,
		"chat_id":      cfg.ChatID,
	}).Info("텔레그램 봇 연결 완료")

	return newRelay(bot, cfg.ChatID, m), nil
}

func newRelay(c client, chatID int64, m *metrics.Metrics) *Relay {
	return &Relay{
		chatID: chatID,
		client: c,

		retryDelay: defaultRetryDelay,
		// 텔레그램은 같은 채팅에 초당 1건 정도를 권장합니다.
		limiter: rate.NewLimiter(rate.Limit(1), 5),

		metrics: m,

		queue: make(chan request, queueSize),
	}
}
