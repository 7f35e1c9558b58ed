package config

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/darkkaiser/autodelivery-server/pkg/cronx"
	"github.com/darkkaiser/autodelivery-server/pkg/validation"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
)

// ProductPlaceholder 배송 응답 템플릿에서 실제 상품(재고 1단위)으로 치환되는 변수입니다.
const ProductPlaceholder = "$product"

// AccountConfig 판매자 계정과 마켓플레이스 접속 정보
type AccountConfig struct {
	ID       int64  `json:"id" validate:"required,gt=0"`
	Username string `json:"username" validate:"required"`

	BaseURL   string `json:"base_url" validate:"required,url"`
	UserAgent string `json:"user_agent"`

	// SessionCookie 원격 호출 시 그대로 전달되는 세션 쿠키 값입니다. (발급/갱신은 이 서버의 책임이 아님)
	SessionCookie string `json:"session_cookie"`

	RequestTimeout    time.Duration `json:"request_timeout" validate:"gt=0"`
	RequestsPerSecond float64       `json:"requests_per_second" validate:"gt=0"`
}

func (c *AccountConfig) validate(v *validator.Validate) error {
	return checkStruct(v, c, "계정(account)")
}

// FeaturesConfig 기능별 전역 토글
type FeaturesConfig struct {
	AutoResponse bool `json:"auto_response"`
	AutoDelivery bool `json:"auto_delivery"`
	AutoRestore  bool `json:"auto_restore"`
	AutoDisable  bool `json:"auto_disable"`
}

// TelegramConfig 운영자 알림 채널 설정. BotToken이 비어 있으면 알림이 비활성화됩니다.
type TelegramConfig struct {
	BotToken string `json:"bot_token" validate:"omitempty,telegram_bot_token"`
	ChatID   int64  `json:"chat_id" validate:"required_with=BotToken"`

	NewMessageNotification bool `json:"new_message_notification"`
	CommandNotification    bool `json:"command_notification"`
	NewOrderNotification   bool `json:"new_order_notification"`
	DeliveryNotification   bool `json:"delivery_notification"`
	LotsRaiseNotification  bool `json:"lots_raise_notification"`
	BotStartNotification   bool `json:"bot_start_notification"`
}

// Enabled 운영자 알림 채널이 구성되어 있는지 여부를 반환합니다.
func (c *TelegramConfig) Enabled() bool {
	return c.BotToken != ""
}

func (c *TelegramConfig) validate(v *validator.Validate) error {
	return checkStruct(v, c, "텔레그램(telegram)")
}

// BlockListConfig 차단 목록 파일 경로와 차단된 구매자에게 적용할 게이트
type BlockListConfig struct {
	File string `json:"file"`

	BlockDelivery               bool `json:"block_delivery"`
	BlockResponse               bool `json:"block_response"`
	BlockNewMessageNotification bool `json:"block_new_message_notification"`
	BlockNewOrderNotification   bool `json:"block_new_order_notification"`
	BlockCommandNotification    bool `json:"block_command_notification"`
}

// AutoResponseConfig 채팅 명령어와 자동 응답 정의
type AutoResponseConfig struct {
	Command  string `json:"command" validate:"required"`
	Response string `json:"response"`

	TelegramNotification bool   `json:"telegram_notification"`
	NotificationText     string `json:"notification_text"`
}

func validateAutoResponses(v *validator.Validate, responses []AutoResponseConfig) error {
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(responses))
	for i, r := range responses {
		if err := checkStruct(v, r, fmt.Sprintf("자동 응답[%d]", i)); err != nil {
			return err
		}

		key := fold.String(strings.TrimSpace(r.Command))
		if _, ok := seen[key]; ok {
			return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("자동 응답 내에 중복된 명령어가 존재합니다: '%s'", r.Command))
		}
		seen[key] = struct{}{}
	}
	return nil
}

// DeliveryRule 자동 배송 규칙. 주문 제목에 Name이 포함되면 규칙이 적용되며, 파일에 정의된 순서대로 처음 일치하는 규칙이 선택됩니다.
type DeliveryRule struct {
	Name         string `json:"name" validate:"required"`
	Response     string `json:"response" validate:"required"`
	ProductsFile string `json:"products_file"`

	Disable            bool `json:"disable"`
	DisableAutoRestore bool `json:"disable_auto_restore"`
	DisableAutoDisable bool `json:"disable_auto_disable"`
}

// HasProductsFile 규칙에 상품 파일이 연결되어 있는지 여부를 반환합니다.
func (r DeliveryRule) HasProductsFile() bool {
	return r.ProductsFile != ""
}

func validateDeliveryRules(v *validator.Validate, rules []DeliveryRule) error {
	if err := checkUniqueField(v, rules, "Name", "배송 규칙"); err != nil {
		return err
	}

	for _, r := range rules {
		if err := checkStruct(v, r, fmt.Sprintf("배송 규칙['%s']", r.Name)); err != nil {
			return err
		}
		if err := r.validatePlaceholder(); err != nil {
			return err
		}
	}
	return nil
}

// validatePlaceholder 상품 파일이 연결된 규칙의 응답에 $product 변수가 포함되어 있는지 검사합니다.
func (r DeliveryRule) validatePlaceholder() error {
	if r.HasProductsFile() && !strings.Contains(r.Response, ProductPlaceholder) {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("배송 규칙['%s']에 상품 파일('%s')이 연결되어 있지만 응답에 %s 변수가 없습니다", r.Name, r.ProductsFile, ProductPlaceholder))
	}
	if strings.ContainsAny(r.ProductsFile, `/\`) {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("배송 규칙['%s']의 상품 파일 이름에 경로 구분자를 사용할 수 없습니다: '%s'", r.Name, r.ProductsFile))
	}
	return nil
}

// ReconcileConfig 판매 목록 조정(Reconcile) 정책
type ReconcileConfig struct {
	MaxAttempts    int           `json:"max_attempts" validate:"min=1"`
	RetryDelay     time.Duration `json:"retry_delay" validate:"min=0"`
	MutationPacing time.Duration `json:"mutation_pacing" validate:"min=0"`
	LotPacing      time.Duration `json:"lot_pacing" validate:"min=0"`

	// Schedule 비어 있지 않으면 주문 목록 변경 이벤트와 별개로 주기적인 조정을 수행합니다.
	Schedule string `json:"schedule"`
}

func (c *ReconcileConfig) validate(v *validator.Validate) error {
	if err := checkStruct(v, c, "목록 조정(reconcile)"); err != nil {
		return err
	}
	if c.Schedule != "" {
		if err := cronx.Validate(c.Schedule); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, "목록 조정(reconcile)의 스케줄(schedule) 설정이 유효하지 않습니다")
		}
	}
	return nil
}

// LotsRefreshConfig 판매 목록 캐시 갱신 주기
type LotsRefreshConfig struct {
	Schedule string `json:"schedule"`
}

func (c *LotsRefreshConfig) validate() error {
	if c.Schedule == "" {
		return nil
	}
	if err := cronx.Validate(c.Schedule); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "판매 목록 갱신(lots_refresh)의 스케줄(schedule) 설정이 유효하지 않습니다")
	}
	return nil
}

// StorageConfig 상품 파일 저장 위치
type StorageConfig struct {
	ProductsDir string `json:"products_dir" validate:"required"`
}

// RunnerConfig 백그라운드 작업 실행기 설정
type RunnerConfig struct {
	MaxWorkers int `json:"max_workers" validate:"min=1,max=64"`
}

// APIConfig 운영용 HTTP API 설정
type APIConfig struct {
	Enabled    bool   `json:"enabled"`
	ListenPort int    `json:"listen_port" validate:"min=1,max=65535"`
	AppKey     string `json:"app_key" validate:"required_if=Enabled true"`

	// AllowOrigins 비어 있으면 CORS 미들웨어를 적용하지 않습니다.
	AllowOrigins []string `json:"allow_origins"`
}

func (c *APIConfig) validate(v *validator.Validate) error {
	if !c.Enabled {
		return nil
	}
	if err := checkStruct(v, c, "운영 API(api)"); err != nil {
		return err
	}
	for _, origin := range c.AllowOrigins {
		if err := validation.Origin(origin); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, "운영 API(api)의 CORS 허용 출처(allow_origins) 설정이 유효하지 않습니다")
		}
	}
	return nil
}
