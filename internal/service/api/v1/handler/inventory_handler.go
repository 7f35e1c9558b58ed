package handler

import (
	"net/http"

	"github.com/darkkaiser/autodelivery-server/internal/inventory"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/httputil"
	"github.com/darkkaiser/autodelivery-server/internal/service/api/v1/model/request"
	applog "github.com/darkkaiser/autodelivery-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// InventoryResponse 상품 파일 목록
type InventoryResponse struct {
	Files []inventory.FileInfo `json:"files"`
}

// AddUnitsResponse 실제로 추가된 재고 수
type AddUnitsResponse struct {
	Name  string `json:"name"`
	Added int    `json:"added"`
}

// ListInventoryHandler GET /api/v1/inventory
func (h *Handler) ListInventoryHandler(c echo.Context) error {
	files, err := h.inventory.List()
	if err != nil {
		return err
	}
	if files == nil {
		files = []inventory.FileInfo{}
	}

	return c.JSON(http.StatusOK, InventoryResponse{Files: files})
}

// CreateProductsFileHandler POST /api/v1/inventory
func (h *Handler) CreateProductsFileHandler(c echo.Context) error {
	req := new(request.CreateProductsFileRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	name, err := h.inventory.Create(req.Name)
	if err != nil {
		return err
	}

	h.log(c).WithField("file", name).Info("상품 파일 생성")

	return c.JSON(http.StatusCreated, inventory.FileInfo{Name: name})
}

// AddUnitsHandler POST /api/v1/inventory/:name/units
func (h *Handler) AddUnitsHandler(c echo.Context) error {
	req := new(request.AddUnitsRequest)
	if err := bindAndValidate(c, req); err != nil {
		return err
	}

	name := c.Param("name")
	added, err := h.inventory.Add(name, req.Units)
	if err != nil {
		return err
	}

	h.log(c).WithFields(applog.Fields{
		"file":  name,
		"added": added,
	}).Info("재고 추가")

	return c.JSON(http.StatusOK, AddUnitsResponse{Name: name, Added: added})
}

// DeleteProductsFileHandler DELETE /api/v1/inventory/:name
func (h *Handler) DeleteProductsFileHandler(c echo.Context) error {
	name := c.Param("name")

	if using := rulesUsingFile(h.configs.Load().Rules, name); len(using) > 0 {
		return NewErrProductsFileInUse(using)
	}

	if err := h.inventory.Delete(name); err != nil {
		return err
	}

	h.log(c).WithField("file", name).Info("상품 파일 삭제")

	return httputil.Success(c)
}
