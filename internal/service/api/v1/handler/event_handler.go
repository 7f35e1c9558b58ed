package handler

import (
	"context"
	"net/http"

	"github.com/darkkaiser/autodelivery-server/internal/service/api/model/response"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/v1/model/request"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// PublishEventHandler POST /api/v1/events
//
// 이벤트를 체인으로 디스패치하고 모든 핸들러가 끝난 뒤 202를 반환합니다.
// 핸들러의 실패는 응답에 반영되지 않습니다.
func (h *Handler) PublishEventHandler(c echo.Context) error {
	req := new(request.EventRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	ev, err := req.ToEvent()
	if err != nil {
		return NewErrValidationFailed(err.Error())
	}

	h.log(c).WithFields(applog.Fields{
		"kind": req.Kind,
		"tag":  ev.EventTag(),
	}).Info("이벤트 수신")

	// 클라이언트가 연결을 끊어도 배송 도중에 중단되지 않아야 합니다.
	if err := h.emitter.Emit(context.WithoutCancel(c.Request().Context()), ev); err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, response.AcceptedResponse{
		ResultCode: 0,
		Kind:       req.Kind,
		Tag:        ev.EventTag(),
	})
}
