// Package notification 운영자 채널로 보내는 알림의 공통 타입과 인터페이스를 정의합니다.
package notification

import (
	"context"
	"sync"

	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
)

const component = "notification.service"

// Button 인라인 키보드 버튼. CallbackData와 URL 중 하나만 사용합니다.
type Button struct {
	Text         string
	CallbackData string
	URL          string
}

// CallbackButton 콜백 데이터를 전달하는 버튼을 생성합니다.
func CallbackButton(text, data string) Button {
	return Button{Text: text, CallbackData: data}
}

// URLButton 링크를 여는 버튼을 생성합니다.
func URLButton(text, url string) Button {
	return Button{Text: text, URL: url}
}

// Keyboard 메시지에 첨부되는 인라인 키보드
type Keyboard struct {
	Rows [][]Button
}

// NewKeyboard 버튼 행들로 키보드를 생성합니다.
func NewKeyboard(rows ...[]Button) *Keyboard {
	return &Keyboard{Rows: rows}
}

// Row 버튼들을 한 행으로 묶습니다.
func Row(buttons ...Button) []Button {
	return buttons
}

// Relay 운영자 채널로 알림을 전달합니다.
//
// Notify는 즉시 반환되며 실제 전송은 백그라운드에서 이루어집니다. 전송 실패는 로그로만 남습니다.
type Relay interface {
	Notify(text string, keyboard *Keyboard)
}

// Service 생명주기를 가진 Relay
type Service interface {
	Relay
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error

	// Health 알림을 전송할 수 있는 상태가 아니면 에러를 반환합니다.
	Health() error
}

// nopService 운영자 채널이 설정되지 않았을 때 사용되며 모든 알림을 버립니다.
type nopService struct{}

// NewNopService 아무것도 전송하지 않는 Service를 반환합니다.
func NewNopService() Service {
	return nopService{}
}

func (nopService) Notify(string, *Keyboard) {}

func (nopService) Health() error { return nil }

func (nopService) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	applog.WithComponent(component).Info("운영자 채널이 설정되지 않아 알림을 전송하지 않습니다")

	go func() {
		defer serviceStopWG.Done()
		<-serviceStopCtx.Done()
	}()

	return nil
}
