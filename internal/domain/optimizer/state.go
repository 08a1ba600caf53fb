package optimizer

import (
	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
)

// state は制限モードの状態 (hasPrimary, hasRice, primaryIsDon) をビットで表す
type state uint8

const (
	stateHasPrimary state = 1 << iota
	stateHasRice
	statePrimaryIsDon

	stateCount = 8
)

func (s state) has(flag state) bool {
	return s&flag != 0
}

// itemClass は品ごとの分類結果（最適化中に何度も評価しないよう事前計算する）
type itemClass struct {
	primary bool
	rice    bool
	don     bool
}

func classify(item menu.Item) itemClass {
	primary := menu.IsPrimaryItem(item)
	return itemClass{
		primary: primary,
		rice:    !primary && menu.IsRiceItem(item),
		don:     primary && menu.IsDonPrimary(item),
	}
}

// next は状態sに品を追加した後の状態を返す。追加できなければ false
//
// 主菜系は1品まで。ライスは1品まで、かつ丼・カレー以外の主菜が既にある場合のみ追加できる。
func (s state) next(c itemClass) (state, bool) {
	if c.primary && s.has(stateHasPrimary) {
		return s, false
	}
	if c.rice && (s.has(stateHasRice) || !s.has(stateHasPrimary) || s.has(statePrimaryIsDon)) {
		return s, false
	}

	n := s
	if c.primary {
		n |= stateHasPrimary
		if c.don {
			n |= statePrimaryIsDon
		}
	}
	if c.rice {
		n |= stateHasRice
	}
	return n, true
}
