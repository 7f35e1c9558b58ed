package request

// CreateRuleRequest 배송 규칙 추가 요청. 상품 파일이 연결되면 응답에 $product가 있어야 합니다.
type CreateRuleRequest struct {
	Name         string `json:"name" validate:"required,max=256" korean:"규칙 이름"`
	Response     string `json:"response" validate:"required,max=4096" korean:"응답 문구"`
	ProductsFile string `json:"products_file" validate:"max=128" korean:"상품 파일"`
}

// UpdateRuleRequest 배송 규칙 부분 수정 요청. nil인 필드는 변경하지 않습니다.
type UpdateRuleRequest struct {
	Response     *string `json:"response"`
	ProductsFile *string `json:"products_file"`

	Disable            *bool `json:"disable"`
	DisableAutoRestore *bool `json:"disable_auto_restore"`
	DisableAutoDisable *bool `json:"disable_auto_disable"`
}
