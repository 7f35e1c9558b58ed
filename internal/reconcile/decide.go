// Package reconcile 원격 상품 노출 상태를 재고와 배송 규칙에 맞춰 복구하거나 비활성화합니다.
package reconcile

import "fmt"

// Action 상품 하나에 대해 수행할 조치
type Action int

const (
	NoOp Action = iota
	Restore
	Disable
)

func (a Action) String() string {
	switch a {
	case NoOp:
		return "noop"
	case Restore:
		return "restore"
	case Disable:
		return "disable"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Input 조치를 결정하는 데 필요한 상품 하나의 상태
type Input struct {
	// PresentRemotely 원격 프로필에 활성 상품으로 노출 중인지 여부
	PresentRemotely bool

	// HasRule 상품 제목에 해당하는 배송 규칙이 있는지 여부
	HasRule            bool
	DisableAutoRestore bool
	DisableAutoDisable bool

	// Stock 규칙의 재고. 상품 파일이 없는 규칙은 1로 취급합니다.
	Stock int

	AutoRestore bool
	AutoDisable bool
}

// Decide 결정표를 위에서부터 평가하여 처음 일치하는 조치를 반환합니다.
//
//  1. 원격에 없음, 규칙 없음, 자동 복구 켜짐 → Restore
//  2. 원격에 없음, 규칙 있음, 자동 복구 켜짐, 규칙의 자동 복구 제외 아님
//     → 자동 비활성화가 꺼져 있으면 Restore, 켜져 있으면 재고가 있을 때만 Restore
//  3. 원격에 있음, 규칙 있음, 재고 0, 자동 비활성화 켜짐, 규칙의 자동 비활성화 제외 아님 → Disable
//  4. 그 밖의 경우 → NoOp
func Decide(in Input) Action {
	if !in.PresentRemotely {
		if !in.HasRule {
			if in.AutoRestore {
				return Restore
			}
			return NoOp
		}

		if in.AutoRestore && !in.DisableAutoRestore {
			if !in.AutoDisable || in.Stock > 0 {
				return Restore
			}
		}
		return NoOp
	}

	if in.HasRule && in.Stock == 0 && in.AutoDisable && !in.DisableAutoDisable {
		return Disable
	}

	return NoOp
}
