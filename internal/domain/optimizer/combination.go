// Package optimizer は予算以内で最も予算に近いメニューの組み合わせを求める
package optimizer

import (
	"fmt"

	"github.com/yayuyokano/meal-calculate/internal/domain/apperr"
	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
)

// Result は最適化結果
type Result struct {
	Total int         `json:"total"`
	Items []menu.Item `json:"items"`
}

// Empty は合計0円・品なしの結果を返す
func Empty() Result {
	return Result{Total: 0, Items: []menu.Item{}}
}

// BestCombination は予算を超えない最大の合計金額と、それを実現する組み合わせを返す
//
// 同じ品は何度でも選べる（金額を昇順に走査する完全ナップサック）。
// 同じ合計金額では品数の少ない組み合わせを残し、同数なら先に見つかった方を残す。
// limitPrimary が true の場合、主菜系は1品まで、ライスは丼・カレー以外の主菜に1品まで付けられる。
func BestCombination(items []menu.Item, budget int, limitPrimary bool) (Result, error) {
	if budget < 0 {
		return Result{}, apperr.InvalidArgument(fmt.Sprintf("budget must be a non-negative integer: %d", budget))
	}
	if budget == 0 {
		return Empty(), nil
	}

	if limitPrimary {
		return bestConstrained(items, budget), nil
	}
	return bestUnbounded(items, budget), nil
}

func bestUnbounded(items []menu.Item, budget int) Result {
	ar := newArena()
	best := make([]int32, budget+1)
	for i := range best {
		best[i] = noNode
	}
	best[0] = rootNode

	for idx, item := range items {
		price := item.Price
		if price < 0 || price > budget {
			continue
		}
		for amount := price; amount <= budget; amount++ {
			from := best[amount-price]
			if from == noNode {
				continue
			}
			length := ar.length(from) + 1
			if current := best[amount]; current != noNode && ar.length(current) <= length {
				continue
			}
			best[amount] = ar.push(idx, from)
		}
	}

	for total := budget; total >= 0; total-- {
		if best[total] != noNode {
			return Result{Total: total, Items: ar.items(best[total], items)}
		}
	}
	return Empty()
}

func bestConstrained(items []menu.Item, budget int) Result {
	ar := newArena()
	slots := make([][stateCount]int32, budget+1)
	for i := range slots {
		for s := range slots[i] {
			slots[i][s] = noNode
		}
	}
	slots[0][0] = rootNode

	classes := make([]itemClass, len(items))
	for i, item := range items {
		classes[i] = classify(item)
	}

	for idx, item := range items {
		price := item.Price
		if price < 0 || price > budget {
			continue
		}
		for amount := price; amount <= budget; amount++ {
			// 0円の品では取得元と更新先が同じになるため、コピーしてから走査する
			source := slots[amount-price]
			for s := 0; s < stateCount; s++ {
				from := source[s]
				if from == noNode {
					continue
				}
				next, ok := state(s).next(classes[idx])
				if !ok {
					continue
				}
				length := ar.length(from) + 1
				if current := slots[amount][next]; current != noNode && ar.length(current) <= length {
					continue
				}
				slots[amount][next] = ar.push(idx, from)
			}
		}
	}

	for total := budget; total >= 0; total-- {
		chosen, chosenState := noNode, state(0)
		for s := 0; s < stateCount; s++ {
			candidate := slots[total][s]
			if candidate == noNode {
				continue
			}
			if chosen == noNode || preferred(ar, items, state(s), candidate, chosenState, chosen) {
				chosen, chosenState = candidate, state(s)
			}
		}
		if chosen != noNode {
			return Result{Total: total, Items: ar.items(chosen, items)}
		}
	}
	return Empty()
}

// preferred は同じ合計金額の候補 a が b より優先されるかを判定
// 主菜あり → 品数が少ない → 品名列が辞書順で小さい、の順に比較する。完全に同じなら b（状態番号が小さい方）を残す
func preferred(ar *arena, items []menu.Item, aState state, a int32, bState state, b int32) bool {
	aPrimary, bPrimary := aState.has(stateHasPrimary), bState.has(stateHasPrimary)
	if aPrimary != bPrimary {
		return aPrimary
	}

	aLen, bLen := ar.length(a), ar.length(b)
	if aLen != bLen {
		return aLen < bLen
	}

	return compareNames(ar.items(a, items), ar.items(b, items)) < 0
}

// compareNames は品名列を辞書順で比較する。品名が同じなら価格で比較する
func compareNames(a, b []menu.Item) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Name != b[i].Name {
			if a[i].Name < b[i].Name {
				return -1
			}
			return 1
		}
		if a[i].Price != b[i].Price {
			if a[i].Price < b[i].Price {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}
