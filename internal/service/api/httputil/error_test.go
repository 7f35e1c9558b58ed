package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/darkkaiser/autodelivery-server/internal/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "404 기본 메시지 대체",
			method:     http.MethodGet,
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   `{"result_code":404,"message":"요청한 리소스를 찾을 수 없습니다"}`,
		},
		{
			name:       "ErrorResponse 메시지 사용",
			method:     http.MethodPost,
			err:        NewBadRequestError("잘못된 요청입니다"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"result_code":400,"message":"잘못된 요청입니다"}`,
		},
		{
			name:       "AppError NotFound",
			method:     http.MethodGet,
			err:        apperrors.New(apperrors.NotFound, "상품 파일이 존재하지 않습니다"),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"result_code":404,"message":"[NotFound] 상품 파일이 존재하지 않습니다"}`,
		},
		{
			name:       "AppError Conflict",
			method:     http.MethodPost,
			err:        apperrors.New(apperrors.Conflict, "이미 존재합니다"),
			wantStatus: http.StatusConflict,
			wantBody:   `{"result_code":409,"message":"[Conflict] 이미 존재합니다"}`,
		},
		{
			name:       "내부 에러는 메시지를 숨김",
			method:     http.MethodGet,
			err:        errors.New("disk failure at /var/lib"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"result_code":500,"message":"내부 서버 오류가 발생했습니다"}`,
		},
		{
			name:       "System AppError도 500",
			method:     http.MethodGet,
			err:        apperrors.New(apperrors.System, "rename failed"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"result_code":500,"message":"내부 서버 오류가 발생했습니다"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(tt.method, "/", nil), rec)

			ErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestErrorHandler_HeadRequestHasNoBody(t *testing.T) {
	t.Parallel()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)

	ErrorHandler(echo.ErrNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorHandler_CommittedResponse(t *testing.T) {
	t.Parallel()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	ErrorHandler(errors.New("late"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
