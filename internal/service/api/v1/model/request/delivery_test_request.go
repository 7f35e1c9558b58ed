package request

// DeliveryTestRequest 시험 배송 키 발급 요청
type DeliveryTestRequest struct {
	// LotName 배송 규칙 이름과 정확히 일치해야 합니다.
	LotName string `json:"lot_name" validate:"required,max=256" korean:"상품명"`
}
