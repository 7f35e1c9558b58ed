// Package mark 운영자 알림에 쓰이는 이모지 상수
package mark

// Mark 이모지 상수를 위한 타입입니다.
type Mark string

const (
	// 답장
	Reply Mark = "📨"

	// 환불
	Refund Mark = "💸"

	// 외부 페이지
	Link Mark = "🌐"
)

// Values 정의된 모든 마크
func Values() []Mark {
	return []Mark{Reply, Refund, Link}
}

// Label 마크 뒤에 공백과 label을 붙여 버튼 문구를 만듭니다.
func (m Mark) Label(label string) string {
	if m == "" {
		return label
	}
	return string(m) + " " + label
}

// String 마크의 순수 이모지 값을 문자열로 반환합니다.
func (m Mark) String() string {
	return string(m)
}
