package telegram

import (
	"sync"
	"time"

	"github.com/darkkaiser/autodelivery-server/internal/metrics"
	"github.com/darkkaiser/autodelivery-server/internal/service/notification"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const component = "notification.telegram"

const (
	// messageMaxLength 텔레그램 메시지 최대 길이(4096)보다 여유를 둔 분할 기준
	messageMaxLength = 3900

	// queueSize 발송 대기열 크기
	queueSize = 100

	defaultRetryDelay = time.Second

	// shutdownTimeout 종료 시 대기열에 남은 메시지를 처리하는 최대 시간
	shutdownTimeout = 60 * time.Second
)

// client 텔레그램 봇 API 중 발송에 필요한 부분
type client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type request struct {
	text     string
	keyboard *notification.Keyboard
}

// Relay 텔레그램 채팅으로 알림을 전송하는 notification.Service 구현체
type Relay struct {
	chatID int64

	client client

	retryDelay time.Duration
	limiter    *rate.Limiter

	metrics *metrics.Metrics

	queue chan request

	mu     sync.RWMutex
	closed bool

	running   bool
	runningMu sync.Mutex
}

var _ notification.Service = (*Relay)(nil)
