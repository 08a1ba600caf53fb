package htmlmenu

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/width"
)

// role は開いているタグ内のテキストをどう扱うか
type role uint8

const (
	roleNone  role = iota // 取り込まない
	roleName              // 品名として取り込む
	rolePrice             // 価格として取り込む
)

// frame はタグスタックの1要素
type frame struct {
	tag  string
	role role
}

// 役割判定に使う属性
var roleAttrKeys = []string{"class", "id", "data-role", "data-type", "aria-label", "itemprop"}

// 区切り判定に使う属性
var entryAttrKeys = []string{"class", "id", "role"}

var (
	nameKeywords  = []string{"name", "namae"}
	priceKeywords = []string{"price", "yen", "cost", "kakaku", "nedan"}
	entryKeywords = []string{"item", "entry", "product", "dish", "card"}
)

// 開始タグで区切りになるタグ
var rowTags = map[string]bool{"li": true, "tr": true, "dt": true}

// 終了タグでも区切りになるタグ（dt は後続の dd に価格があるため含めない）
var rowEndTags = map[string]bool{"li": true, "tr": true}

// 属性次第で区切りになるコンテナ
var containerTags = map[string]bool{"div": true, "section": true, "article": true, "dl": true}

// 終了タグを持たない要素（スタックに積まない）
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// テキストを無視する要素
var rawTextTags = map[string]bool{"script": true, "style": true, "noscript": true, "template": true}

var priceTextPattern = regexp.MustCompile(`\d[\d,]*`)

// attrValue は属性値を返す（キーは tokenizer が小文字化済み）
func attrValue(attrs []html.Attribute, key string) (string, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// joinAttrs は指定属性の値を小文字化して連結する
func joinAttrs(attrs []html.Attribute, keys []string) string {
	var b strings.Builder
	for _, key := range keys {
		if v, ok := attrValue(attrs, key); ok && v != "" {
			b.WriteString(strings.ToLower(v))
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// hasClass はclass属性に指定トークンが含まれるかを判定
func hasClass(attrs []html.Attribute, class string) bool {
	v, ok := attrValue(attrs, "class")
	if !ok || class == "" {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// dataPrice は data-price（または data-*-price）属性の価格を返す
func dataPrice(attrs []html.Attribute) (int, bool) {
	for _, a := range attrs {
		if a.Key != "data-price" && !(strings.HasPrefix(a.Key, "data-") && strings.HasSuffix(a.Key, "-price")) {
			continue
		}
		if price, ok := parsePriceAttr(a.Val); ok {
			return price, true
		}
	}
	return 0, false
}

// detectRole はclass等の属性から役割を決める。価格キーワードを優先する
func detectRole(attrs []html.Attribute) role {
	text := joinAttrs(attrs, roleAttrKeys)
	if text == "" {
		return roleNone
	}
	if containsAny(text, priceKeywords) {
		return rolePrice
	}
	if containsAny(text, nameKeywords) {
		return roleName
	}
	return roleNone
}

// isEntryContainer は属性から1品分のコンテナと判断できるかを判定
// 品名・価格のキーワードも含む要素（例: item-name）は区切りにしない
func isEntryContainer(tag string, attrs []html.Attribute) bool {
	if !containerTags[tag] {
		return false
	}
	text := joinAttrs(attrs, entryAttrKeys)
	if !containsAny(text, entryKeywords) {
		return false
	}
	return !containsAny(text, nameKeywords) && !containsAny(text, priceKeywords)
}

// parsePriceText はテキスト中の最初の数字列を価格として解釈する
// 全角数字・桁区切りを受け付ける。解釈できなければ false
func parsePriceText(text string) (int, bool) {
	narrow := width.Narrow.String(text)
	match := priceTextPattern.FindString(narrow)
	if match == "" {
		return 0, false
	}
	value, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, false
	}
	return value, true
}

// parsePriceAttr は属性値全体を価格として解釈する
func parsePriceAttr(value string) (int, bool) {
	cleaned := width.Narrow.String(strings.TrimSpace(value))
	cleaned = strings.NewReplacer(",", "", " ", "", "円", "", "¥", "", "\\", "").Replace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	price, err := strconv.Atoi(cleaned)
	if err != nil || price < 0 {
		return 0, false
	}
	return price, true
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
