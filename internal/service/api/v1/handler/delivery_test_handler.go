package handler

import (
	"net/http"

	"github.com/darkkaiser/autodelivery-server/internal/deliverytest"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/v1/model/request"
	"github.com/labstack/echo/v4"
)

// DeliveryTestResponse 발급된 키와 채팅에 그대로 입력할 명령어
type DeliveryTestResponse struct {
	LotName string `json:"lot_name"`
	Key     string `json:"key"`
	Command string `json:"command"`
}

// IssueDeliveryTestHandler POST /api/v1/delivery-tests
func (h *Handler) IssueDeliveryTestHandler(c echo.Context) error {
	req := new(request.DeliveryTestRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	rule, ok := h.configs.Load().RuleByName(req.LotName)
	if !ok {
		return NewErrRuleNotFound()
	}

	key, err := h.keys.Issue(rule.Name)
	if err != nil {
		return err
	}

	h.log(c).WithField("rule", rule.Name).Info("시험 배송 키 발급")

	return c.JSON(http.StatusCreated, DeliveryTestResponse{
		LotName: rule.Name,
		Key:     key,
		Command: deliverytest.CommandPrefix + " " + key,
	})
}

