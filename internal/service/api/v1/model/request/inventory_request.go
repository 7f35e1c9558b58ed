package request

// CreateProductsFileRequest 상품 파일 생성 요청. 확장자가 없으면 .txt가 붙습니다.
type CreateProductsFileRequest struct {
	Name string `json:"name" validate:"required,max=128" korean:"파일 이름"`
}

// AddUnitsRequest 상품 파일에 재고를 추가하는 요청
type AddUnitsRequest struct {
	Units []string `json:"units" validate:"required,min=1,max=10000" korean:"상품 목록"`
}
