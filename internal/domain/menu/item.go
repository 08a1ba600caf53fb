package menu

// Item はメニュー1品を表す値オブジェクト
// 抽出処理でのみ生成され、生成後は変更しない
type Item struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Category string `json:"category,omitempty"` // 空文字はカテゴリ不明
}

// Key は重複判定に使うキー
type Key struct {
	Name  string
	Price int
}

// NewItem は新しいItemを作成
func NewItem(name string, price int, category string) Item {
	return Item{
		Name:     name,
		Price:    price,
		Category: category,
	}
}

// Key はItemの重複判定キーを返す
func (i Item) Key() Key {
	return Key{Name: i.Name, Price: i.Price}
}

// HasCategory はカテゴリが判明しているかを判定
func (i Item) HasCategory() bool {
	return i.Category != ""
}

// Merge は複数のItem列を (name, price) で重複排除して結合する
// 先に出現した順序を保ち、カテゴリ不明の既存要素はカテゴリ付きの後続要素で置き換える
func Merge(groups ...[]Item) []Item {
	index := make(map[Key]int)
	merged := make([]Item, 0)

	for _, group := range groups {
		for _, item := range group {
			pos, exists := index[item.Key()]
			if !exists {
				index[item.Key()] = len(merged)
				merged = append(merged, item)
				continue
			}
			if !merged[pos].HasCategory() && item.HasCategory() {
				merged[pos] = item
			}
		}
	}

	return merged
}
