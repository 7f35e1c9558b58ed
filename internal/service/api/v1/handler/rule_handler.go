package handler

import (
	"net/http"
	"slices"
	"strings"

	"github.com/darkkaiser/autodelivery-server/internal/config"
	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/httputil"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/v1/model/request"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// RulesResponse 배송 규칙 목록 (설정 파일 순서)
type RulesResponse struct {
	Rules []config.DeliveryRule `json:"rules"`
}

// ListRulesHandler GET /api/v1/rules
func (h *Handler) ListRulesHandler(c echo.Context) error {
	rules := h.configs.Load().Rules
	if rules == nil {
		rules = []config.DeliveryRule{}
	}
	return c.JSON(http.StatusOK, RulesResponse{Rules: rules})
}

// GetRuleHandler GET /api/v1/rules/:name
func (h *Handler) GetRuleHandler(c echo.Context) error {
	rule, ok := h.configs.Load().RuleByName(c.Param("name"))
	if !ok {
		return NewErrRuleNotFound()
	}
	return c.JSON(http.StatusOK, rule)
}

// CreateRuleHandler POST /api/v1/rules
func (h *Handler) CreateRuleHandler(c echo.Context) error {
	req := new(request.CreateRuleRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	rule := config.DeliveryRule{
		Name:         strings.TrimSpace(req.Name),
		Response:     req.Response,
		ProductsFile: strings.TrimSpace(req.ProductsFile),
	}
	if err := h.ensureProductsFile(rule.ProductsFile); err != nil {
		return err
	}

	err := h.configs.Update(func(s *config.Snapshot) error {
		if _, exists := s.RuleByName(rule.Name); exists {
			return NewErrRuleAlreadyExists()
		}
		s.Rules = append(s.Rules, rule)
		return nil
	})
	if err != nil {
		return err
	}

	h.log(c).WithField("rule", rule.Name).Info("배송 규칙 추가")

	return c.JSON(http.StatusCreated, rule)
}

// UpdateRuleHandler PATCH /api/v1/rules/:name
//
// 상품 파일이 연결된 규칙의 응답에서 $product를 빼는 변경은 거부되며, 기존 규칙이 그대로 유지됩니다.
func (h *Handler) UpdateRuleHandler(c echo.Context) error {
	req := new(request.UpdateRuleRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	if req.ProductsFile != nil {
		*req.ProductsFile = strings.TrimSpace(*req.ProductsFile)
		if err := h.ensureProductsFile(*req.ProductsFile); err != nil {
			return err
		}
	}

	name := c.Param("name")

	var updated config.DeliveryRule
	err := h.configs.Update(func(s *config.Snapshot) error {
		i := slices.IndexFunc(s.Rules, func(r config.DeliveryRule) bool { return r.Name == name })
		if i < 0 {
			return NewErrRuleNotFound()
		}

		r := s.Rules[i]
		if req.Response != nil {
			r.Response = *req.Response
		}
		if req.ProductsFile != nil {
			r.ProductsFile = *req.ProductsFile
		}
		if req.Disable != nil {
			r.Disable = *req.Disable
		}
		if req.DisableAutoRestore != nil {
			r.DisableAutoRestore = *req.DisableAutoRestore
		}
		if req.DisableAutoDisable != nil {
			r.DisableAutoDisable = *req.DisableAutoDisable
		}

		s.Rules[i] = r
		updated = r
		return nil
	})
	if err != nil {
		return err
	}

	h.log(c).WithField("rule", name).Info("배송 규칙 수정")

	return c.JSON(http.StatusOK, updated)
}

// DeleteRuleHandler DELETE /api/v1/rules/:name
func (h *Handler) DeleteRuleHandler(c echo.Context) error {
	name := c.Param("name")

	err := h.configs.Update(func(s *config.Snapshot) error {
		i := slices.IndexFunc(s.Rules, func(r config.DeliveryRule) bool { return r.Name == name })
		if i < 0 {
			return NewErrRuleNotFound()
		}
		s.Rules = slices.Delete(s.Rules, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	h.log(c).WithField("rule", name).Info("배송 규칙 삭제")

	return httputil.Success(c)
}

// ensureProductsFile 연결하려는 상품 파일이 실제로 있는지 확인합니다. 빈 이름은 연결 해제입니다.
func (h *Handler) ensureProductsFile(name string) error {
	if name == "" {
		return nil
	}
	if _, err := h.inventory.Count(name); err != nil {
		if apperrors.Is(err, apperrors.NotFound) {
			return NewErrProductsFileNotFound()
		}
		return err
	}
	return nil
}

// rulesUsingFile 상품 파일을 사용하는 규칙 이름들
func rulesUsingFile(rules []config.DeliveryRule, name string) []string {
	return lo.FilterMap(rules, func(r config.DeliveryRule, _ int) (string, bool) {
		return r.Name, r.HasProductsFile() && strings.EqualFold(r.ProductsFile, name)
	})
}
