package htmlmenu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yayuyokano/meal-calculate/internal/domain/cafeteria"
	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
)

func TestDefaultCategoryLabels(t *testing.T) {
	labels := DefaultCategoryLabels()

	assert.Len(t, labels, 8)
	assert.Equal(t, menu.CategoryMain, labels["on_a"])
	assert.Equal(t, menu.CategoryKebabVeggie, labels["on_h"])

	// 呼び出しごとに独立したコピー
	labels["on_a"] = "changed"
	assert.Equal(t, menu.CategoryMain, DefaultCategoryLabels()["on_a"])
}

func TestResolveCategoryLabels(t *testing.T) {
	doc := `
<div class="toggle-title" id="on_a">
  <span>主菜 メイン</span>
</div>
<h3 class="foo toggle-title" id="on_z">  オーダーメニュー  </h3>
<div class="toggle-title">見出しIDなし</div>
<div class="other" id="on_c">うどん</div>`

	labels := ResolveCategoryLabels(doc, "")

	assert.Equal(t, menu.CategoryMain, labels["on_a"])
	assert.Equal(t, menu.CategoryOrder, labels["on_z"])
	assert.Equal(t, menu.CategorySide, labels["on_b"])
	assert.Equal(t, menu.CategoryNoodle, labels["on_c"])
	assert.Len(t, labels, 9)
}

func TestResolveCategoryLabels_OverridesDefaults(t *testing.T) {
	doc := `<p class="tab" id="on_b">デザート</p>`

	labels := ResolveCategoryLabels(doc, "tab")

	assert.Equal(t, menu.CategoryDessert, labels["on_b"])
}

func TestLookupFragmentCategory(t *testing.T) {
	labels := DefaultCategoryLabels()

	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{name: "on_付きコード", endpoint: "https://west2-univ.jp/sp/menu_load.php?t=650111&a=on_c", want: menu.CategoryNoodle},
		{name: "on_なしコード", endpoint: "menu_load.php?t=650111&a=d", want: menu.CategoryDonCurry},
		{name: "表にだけon_なしで登録", endpoint: "menu_load.php?a=on_x", want: "X"},
		{name: "未知のコード", endpoint: "menu_load.php?t=650111&a=on_zz", want: ""},
		{name: "aパラメータなし", endpoint: "menu_load.php?t=650111", want: ""},
	}

	labels["x"] = "X"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupFragmentCategory(tt.endpoint, labels))
		})
	}
}

func TestDiscoverFragmentEndpoints(t *testing.T) {
	doc := `
<div onclick="load('menu_load.php?t=650111&amp;a=on_a')">主菜</div>
<a href="/sp/menu_load.php?t=650111&a=on_b">副菜</a>
<script>$.get("menu_load.php?t=650111&a=on_a");</script>
<a href="menu.php?t=650112">他の食堂</a>`

	got := DiscoverFragmentEndpoints(doc, "https://west2-univ.jp/sp/menu.php?t=650111")

	assert.Equal(t, []string{
		"https://west2-univ.jp/sp/menu_load.php?t=650111&a=on_a",
		"https://west2-univ.jp/sp/menu_load.php?t=650111&a=on_b",
	}, got)
}

func TestDiscoverFragmentEndpoints_None(t *testing.T) {
	got := DiscoverFragmentEndpoints(`<li>メニューなし</li>`, "https://west2-univ.jp/sp/menu.php?t=650111")

	assert.Empty(t, got)
}

func TestDiscoverCafeterias(t *testing.T) {
	doc := `
<ul>
  <li><a href="menu.php?t=650111">中央食堂</a></li>
  <li><a href="/sp/menu.php?t=650112"> 北部 <b>食堂</b> </a></li>
  <li><a href="menu.php?t=650111">重複</a></li>
  <li><a href="info.php">お知らせ</a></li>
  <li><a href="menu.php?t=650113"></a></li>
</ul>`

	got := DiscoverCafeterias(doc, "https://west2-univ.jp/sp/index.php")

	assert.Equal(t, []cafeteria.Cafeteria{
		{ID: "650111", Name: "中央食堂"},
		{ID: "650112", Name: "北部 食堂"},
	}, got)
}
