// Package cafeteria は食堂IDと名前・メニューURLの対応を扱う
package cafeteria

import (
	"sort"
	"strings"
)

// DefaultURLTemplate はメニューページURLのテンプレート（{id} を食堂IDで置換）
const DefaultURLTemplate = "https://west2-univ.jp/sp/menu.php?t={id}"

// Cafeteria は食堂を表す値オブジェクト
type Cafeteria struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultCafeterias はデータファイルがない場合に使う組み込みの食堂一覧
func DefaultCafeterias() []Cafeteria {
	return []Cafeteria{
		{ID: "650111", Name: "中央食堂"},
		{ID: "650112", Name: "吉田食堂"},
		{ID: "650113", Name: "北部食堂"},
		{ID: "650115", Name: "南部食堂"},
		{ID: "650116", Name: "宇治食堂"},
		{ID: "650118", Name: "カフェテリア・ルネ"},
		{ID: "650120", Name: "桂セレネ"},
	}
}

// MenuURL はテンプレートにIDを埋め込んだURLを返す
func MenuURL(template, id string) string {
	if template == "" {
		template = DefaultURLTemplate
	}
	return strings.ReplaceAll(template, "{id}", id)
}

// Directory は食堂一覧の参照サービス
// 起動時に1度だけ構築し、必要な箇所へ渡す
type Directory struct {
	cafeterias  []Cafeteria
	byID        map[string]Cafeteria
	urlTemplate string
}

// NewDirectory は新しいDirectoryを作成
// listが空なら組み込みの一覧を使う
func NewDirectory(list []Cafeteria, urlTemplate string) *Directory {
	if len(list) == 0 {
		list = DefaultCafeterias()
	}

	sorted := make([]Cafeteria, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	byID := make(map[string]Cafeteria, len(sorted))
	for _, c := range sorted {
		if _, exists := byID[c.ID]; !exists {
			byID[c.ID] = c
		}
	}

	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}

	return &Directory{
		cafeterias:  sorted,
		byID:        byID,
		urlTemplate: urlTemplate,
	}
}

// All は名前順の食堂一覧を返す
func (d *Directory) All() []Cafeteria {
	out := make([]Cafeteria, len(d.cafeterias))
	copy(out, d.cafeterias)
	return out
}

// Name は食堂名を返す。未知のIDはそのまま返す
func (d *Directory) Name(id string) string {
	if c, ok := d.byID[id]; ok {
		return c.Name
	}
	return id
}

// URL はメニューページURLを返す。未知のIDもテンプレートから組み立てる
func (d *Directory) URL(id string) string {
	return MenuURL(d.urlTemplate, id)
}

// Contains は既知の食堂IDかを判定
func (d *Directory) Contains(id string) bool {
	_, ok := d.byID[id]
	return ok
}
