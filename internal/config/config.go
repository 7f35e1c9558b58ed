package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "autodelivery-server"

	// DefaultFilename 실행 인자로 경로가 주어지지 않았을 때 읽는 설정 파일명입니다.
	DefaultFilename = AppName + ".json"

	// envPrefix 설정 값을 덮어쓰는 환경 변수의 접두사입니다.
	// 예: AUTODELIVERY_RECONCILE__MAX_ATTEMPTS -> reconcile.max_attempts
	envPrefix = "AUTODELIVERY_"
)

// 원격 호출 재시도 및 목록 조정(Reconcile) 페이싱 기본값
const (
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultMutationPacing = 200 * time.Millisecond
	DefaultLotPacing      = 500 * time.Millisecond
)

const (
	DefaultBaseURL           = "https://funpay.com"
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	DefaultRequestTimeout    = 15 * time.Second
	DefaultRequestsPerSecond = 2.0

	DefaultProductsDir   = "storage/products"
	DefaultBlockListFile = "storage/cache/block_list.json"

	DefaultLotsRefreshSchedule = "0 */30 * * * *"

	DefaultAPIListenPort    = 8484
	DefaultRunnerMaxWorkers = 4
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug        bool                 `json:"debug"`
	Account      AccountConfig        `json:"account"`
	Features     FeaturesConfig       `json:"features"`
	Telegram     TelegramConfig       `json:"telegram"`
	BlockList    BlockListConfig      `json:"block_list"`
	AutoResponse []AutoResponseConfig `json:"auto_response"`
	AutoDelivery []DeliveryRule       `json:"auto_delivery"`
	Reconcile    ReconcileConfig      `json:"reconcile"`
	LotsRefresh  LotsRefreshConfig    `json:"lots_refresh"`
	Storage      StorageConfig        `json:"storage"`
	Runner       RunnerConfig         `json:"runner"`
	API          APIConfig            `json:"api"`
}

// validate 설정 파일 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate(v *validator.Validate) error {
	if err := c.Account.validate(v); err != nil {
		return err
	}
	if err := c.Telegram.validate(v); err != nil {
		return err
	}
	if err := validateAutoResponses(v, c.AutoResponse); err != nil {
		return err
	}
	if err := validateDeliveryRules(v, c.AutoDelivery); err != nil {
		return err
	}
	if err := c.Reconcile.validate(v); err != nil {
		return err
	}
	if err := c.LotsRefresh.validate(); err != nil {
		return err
	}
	if err := checkStruct(v, c.Storage, "저장소(storage)"); err != nil {
		return err
	}
	if err := checkStruct(v, c.Runner, "작업 실행기(runner)"); err != nil {
		return err
	}
	if err := c.API.validate(v); err != nil {
		return err
	}

	return nil
}

// VerifyRecommendations 강제하지는 않지만 운영상 권장되는 설정 준수 여부를 진단하여 경고 메시지를 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if c.Telegram.BotToken == "" {
		warnings = append(warnings, "텔레그램 봇 토큰이 설정되지 않아 운영자 알림이 전송되지 않습니다")
	}
	if c.Features.AutoDisable && !c.Features.AutoRestore {
		warnings = append(warnings, "auto_disable만 활성화되어 있어, 재고가 채워져도 비활성화된 상품이 자동으로 복구되지 않습니다")
	}
	if c.API.Enabled && c.API.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.API.ListenPort))
	}
	for _, r := range c.AutoDelivery {
		if r.ProductsFile == "" && strings.Contains(r.Response, ProductPlaceholder) {
			warnings = append(warnings, fmt.Sprintf("배송 규칙['%s']에 상품 파일이 연결되지 않았지만 응답에 %s 변수가 포함되어 있습니다", r.Name, ProductPlaceholder))
		}
	}

	return warnings
}

// newDefaultConfig 설정 파일에 값이 없을 때 적용되는 기본값을 담은 AppConfig를 반환합니다.
func newDefaultConfig() AppConfig {
	return AppConfig{
		Account: AccountConfig{
			BaseURL:           DefaultBaseURL,
			UserAgent:         DefaultUserAgent,
			RequestTimeout:    DefaultRequestTimeout,
			RequestsPerSecond: DefaultRequestsPerSecond,
		},
		Telegram: TelegramConfig{
			NewMessageNotification: true,
			CommandNotification:    true,
			NewOrderNotification:   true,
			DeliveryNotification:   true,
			LotsRaiseNotification:  true,
			BotStartNotification:   true,
		},
		BlockList: BlockListConfig{
			File: DefaultBlockListFile,
		},
		Reconcile: ReconcileConfig{
			MaxAttempts:    DefaultMaxAttempts,
			RetryDelay:     DefaultRetryDelay,
			MutationPacing: DefaultMutationPacing,
			LotPacing:      DefaultLotPacing,
		},
		LotsRefresh: LotsRefreshConfig{
			Schedule: DefaultLotsRefreshSchedule,
		},
		Storage: StorageConfig{
			ProductsDir: DefaultProductsDir,
		},
		Runner: RunnerConfig{
			MaxWorkers: DefaultRunnerMaxWorkers,
		},
		API: APIConfig{
			ListenPort: DefaultAPIListenPort,
		},
	}
}

// normalizeEnvKey 환경 변수 이름을 koanf 키 경로로 변환합니다.
// 이중 언더스코어(__)는 계층 구분자(.)로 변환됩니다.
func normalizeEnvKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

// Load 기본 설정 파일을 읽어 애플리케이션 설정을 로드합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정된 경로의 설정 파일을 읽어 AppConfig 객체를 생성합니다.
//
// 우선순위: 기본값 < JSON 설정 파일 < 환경 변수(AUTODELIVERY_)
func LoadWithFile(filename string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값
	if err := k.Load(structs.Provider(newDefaultConfig(), "json"), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	// 2. JSON 설정 파일
	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.System, fmt.Sprintf("설정 파일을 찾을 수 없습니다: '%s'", filename))
		}
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일 로드 중 오류가 발생했습니다: '%s'", filename))
	}

	// 3. 환경 변수
	if err := k.Load(env.Provider(envPrefix, ".", normalizeEnvKey), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	var appConfig AppConfig
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &appConfig,
			ErrorUnused:      true, // 구조체에 없는 필드(오타 등)가 설정 파일에 있으면 에러
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	if err := appConfig.validate(newValidator()); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("설정 파일('%s')의 유효성 검증에 실패했습니다", filename))
	}

	return &appConfig, nil
}
