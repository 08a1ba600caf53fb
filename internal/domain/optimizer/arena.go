package optimizer

import (
	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
)

const (
	noNode   int32 = -1
	rootNode int32 = 0
)

// node は組み合わせの末尾1品を表す
// 親を根まで辿ると組み合わせ全体になる。一度作ったnodeは変更しない
type node struct {
	item   int32 // items のインデックス（根は -1）
	parent int32
	length int32
}

// arena はnodeをインデックスで管理する
type arena struct {
	nodes []node
}

// newArena は根（空の組み合わせ）だけを持つarenaを作成
func newArena() *arena {
	return &arena{
		nodes: []node{{item: -1, parent: noNode, length: 0}},
	}
}

// push はparentの末尾にitemを追加した組み合わせを作成
func (a *arena) push(item int, parent int32) int32 {
	a.nodes = append(a.nodes, node{
		item:   int32(item),
		parent: parent,
		length: a.nodes[parent].length + 1,
	})
	return int32(len(a.nodes) - 1)
}

// length は組み合わせの品数を返す
func (a *arena) length(id int32) int {
	return int(a.nodes[id].length)
}

// indices は組み合わせを追加順のインデックス列で返す
func (a *arena) indices(id int32) []int {
	out := make([]int, a.nodes[id].length)
	for i := len(out) - 1; id != rootNode; i-- {
		out[i] = int(a.nodes[id].item)
		id = a.nodes[id].parent
	}
	return out
}

// items は組み合わせを追加順のItem列で返す
func (a *arena) items(id int32, source []menu.Item) []menu.Item {
	idx := a.indices(id)
	out := make([]menu.Item, len(idx))
	for i, j := range idx {
		out[i] = source[j]
	}
	return out
}
