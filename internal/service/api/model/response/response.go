// Package response 운영 API의 공통 응답 본문을 정의합니다.
package response

// ErrorResponse 에러 응답
type ErrorResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message"`
}

// SuccessResponse 성공 응답
type SuccessResponse struct {
	ResultCode int    `json:"result_code"`
	Message    string `json:"message,omitempty"`
}

// AcceptedResponse 이벤트가 접수되어 처리되었음을 알립니다.
type AcceptedResponse struct {
	ResultCode int    `json:"result_code"`
	Kind       string `json:"kind"`
	Tag        string `json:"tag"`
}
