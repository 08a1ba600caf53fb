package menu

import (
	"strings"
)

// カテゴリの正規名
// 規則に一致しないラベルはそのまま通すため、閉じた列挙ではない
const (
	CategoryMain        = "主菜"
	CategorySide        = "副菜"
	CategoryNoodle      = "麺類"
	CategoryDonCurry    = "丼・カレー"
	CategoryRice        = "ライス"
	CategoryDessert     = "デザート"
	CategorySoup        = "汁物"
	CategoryOrder       = "オーダー"
	CategoryKebabVeggie = "ケバブ&ベジタリアン"
)

// primaryLimitCategories は制限モードで1品までしか選べないカテゴリ
var primaryLimitCategories = map[string]struct{}{
	CategoryMain:        {},
	CategoryNoodle:      {},
	CategoryDonCurry:    {},
	CategoryOrder:       {},
	CategoryKebabVeggie: {},
}

// categoryRule はラベル正規化の単一ルール
type categoryRule struct {
	keywords  []string
	canonical string
}

// labelRules はラベル正規化ルール（先頭から順に評価し、最初の一致を採用）
// 「カレーライス」等の複合ラベルがあるため、丼・カレー → ライス → 麺 → 主菜 の順序を崩さないこと
var labelRules = []categoryRule{
	{keywords: []string{"丼"}, canonical: CategoryDonCurry},
	{keywords: []string{"カレー"}, canonical: CategoryDonCurry},
	{keywords: []string{"ライス"}, canonical: CategoryRice},
	{keywords: []string{"ご飯"}, canonical: CategoryRice},
	{keywords: []string{"ごはん"}, canonical: CategoryRice},
	{keywords: []string{"麺"}, canonical: CategoryNoodle},
	{keywords: []string{"うどん", "そば", "ラーメン"}, canonical: CategoryNoodle},
	{keywords: []string{"主菜"}, canonical: CategoryMain},
	{keywords: []string{"メイン"}, canonical: CategoryMain},
	{keywords: []string{"副菜", "小鉢", "サラダ"}, canonical: CategorySide},
	{keywords: []string{"デザート", "スイーツ"}, canonical: CategoryDessert},
	{keywords: []string{"汁", "スープ"}, canonical: CategorySoup},
	{keywords: []string{"オーダー"}, canonical: CategoryOrder},
	{keywords: []string{"ケバブ", "ベジタリアン"}, canonical: CategoryKebabVeggie},
}

// 品名からの推定に使うキーワード
var (
	donCurryKeywords = []string{"丼", "どんぶり", "カレー", "ハヤシ", "オムライス", "ビビンバ", "curry"}
	noodleKeywords   = []string{"うどん", "そば", "蕎麦", "ラーメン", "らーめん", "麺", "パスタ", "スパゲ", "udon", "soba", "ramen", "pasta", "noodle"}
	riceKeywords     = []string{"ライス", "ご飯", "ごはん", "rice"}
	mainKeywords     = []string{"定食", "唐揚", "からあげ", "フライ", "カツ", "ハンバーグ", "焼", "チキン", "ポーク", "魚", "天ぷら", "コロッケ", "メンチ", "ステーキ", "南蛮", "ケバブ", "chicken", "pork", "fish", "steak", "kebab"}
	sideKeywords     = []string{"副菜", "サラダ", "小鉢", "冷奴", "味噌汁", "みそ汁", "汁物", "スープ", "漬物", "おひたし", "和え", "納豆", "豆腐", "玉子", "卵", "プリン", "ヨーグルト", "ケーキ", "ゼリー", "アイス", "デザート", "salad", "soup", "dessert"}
)

// nameRules は品名推定の優先順位（丼・カレー → 麺類 → ライス → 主菜）
// 「カレーうどん」は丼・カレーになる
var nameRules = []categoryRule{
	{keywords: donCurryKeywords, canonical: CategoryDonCurry},
	{keywords: noodleKeywords, canonical: CategoryNoodle},
	{keywords: riceKeywords, canonical: CategoryRice},
	{keywords: mainKeywords, canonical: CategoryMain},
}

// CanonicalCategory はカテゴリラベルを正規名に変換する
// 空ラベルは空文字（不明）、どのルールにも一致しなければトリム済みラベルをそのまま返す
func CanonicalCategory(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}

	for _, rule := range labelRules {
		if containsAny(trimmed, rule.keywords) {
			return rule.canonical
		}
	}

	return trimmed
}

// InferCategoryFromName は品名からカテゴリを推定する
// 英字は大文字小文字を区別しない。一致しなければ空文字
func InferCategoryFromName(name string) string {
	lowered := strings.ToLower(name)
	if strings.TrimSpace(lowered) == "" {
		return ""
	}

	for _, rule := range nameRules {
		if containsAny(lowered, rule.keywords) {
			return rule.canonical
		}
	}

	return ""
}

// IsPrimaryCategory は正規名が1品制限の対象かを判定
func IsPrimaryCategory(category string) bool {
	_, ok := primaryLimitCategories[category]
	return ok
}

// PrimaryLimitCategories は1品制限の対象カテゴリを返す
func PrimaryLimitCategories() []string {
	return []string{CategoryMain, CategoryNoodle, CategoryDonCurry, CategoryOrder, CategoryKebabVeggie}
}

// IsPrimaryItem は1品制限の対象となる品かを判定
//
// 判定順: カテゴリ → ライス判定 → 品名推定 → 副菜キーワード。
// どれにも当てはまらない品は主菜扱い（1品枠を消費する）とする。
// 分類できない品を副菜として何品でも選べてしまうより、制限側に倒す方針。
func IsPrimaryItem(item Item) bool {
	category := CanonicalCategory(item.Category)
	if IsPrimaryCategory(category) {
		return true
	}

	if IsRiceItem(item) {
		return false
	}

	if IsPrimaryCategory(InferCategoryFromName(item.Name)) {
		return true
	}

	// 副菜キーワードは品名とカテゴリの両方を見る
	if containsAny(strings.ToLower(item.Name+" "+category), sideKeywords) {
		return false
	}

	return true
}

// IsRiceItem はライス類かを判定
func IsRiceItem(item Item) bool {
	category := CanonicalCategory(item.Category)
	if category == CategoryRice {
		return true
	}
	if IsPrimaryCategory(category) {
		return false
	}
	return InferCategoryFromName(item.Name) == CategoryRice
}

// IsDonPrimary は丼・カレー系の主食かを判定（ライスを付けられない主菜）
func IsDonPrimary(item Item) bool {
	category := CanonicalCategory(item.Category)
	if category == CategoryDonCurry {
		return true
	}
	if IsPrimaryCategory(category) || category == CategoryRice {
		return false
	}
	return InferCategoryFromName(item.Name) == CategoryDonCurry
}

// containsAny はtextがいずれかのキーワードを含むかを判定
func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
