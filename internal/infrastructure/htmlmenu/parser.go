// Package htmlmenu は食堂のメニューページ（HTML・AJAXフラグメント）から品名・価格・カテゴリを抜き出す
//
// DOMは構築せず、トークン列をタグスタックで線形に走査する。
// ページ構造の変更には完全には追従できないため、抽出はあくまで経験則による。
package htmlmenu

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
)

// Parser はメニュー構造パーサー
// 1インスタンスは1文書（またはフラグメント）用で、並行利用はしない
type Parser struct {
	stack     []frame
	nameParts []string
	price     int
	hasPrice  bool
	seen      map[menu.Key]struct{}
	items     []menu.Item

	// category は固定カテゴリ（フラグメント用）。空なら見出しから追跡する
	category string

	headingMarker   string
	labels          map[string]string
	headingDepth    int
	headingID       string
	headingCaptured bool
	currentCategory string
}

// ParserOption はParserの設定
type ParserOption func(*Parser)

// WithCategory はこのパーサーが出力する全品のカテゴリを固定する
func WithCategory(label string) ParserOption {
	return func(p *Parser) {
		p.category = menu.CanonicalCategory(label)
	}
}

// WithHeadingTracking はカテゴリ見出し（marker クラスを持つ要素）を追跡し、
// 直近の見出しのカテゴリを後続の品に付ける。labels は見出しID → ラベル
func WithHeadingTracking(marker string, labels map[string]string) ParserOption {
	return func(p *Parser) {
		p.headingMarker = marker
		p.labels = labels
	}
}

// NewParser は新しいParserを作成
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		seen:         make(map[menu.Key]struct{}),
		items:        make([]menu.Item, 0),
		headingDepth: -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FeedString は文字列のHTMLを走査する
func (p *Parser) FeedString(doc string) {
	p.Feed(strings.NewReader(doc))
}

// Feed はHTMLを走査する。不正なマークアップでもエラーにはせず、読めた範囲の結果を残す
func (p *Parser) Feed(r io.Reader) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF 以外（読み込み失敗）も、そこまでの結果で打ち切る
			return
		case html.StartTagToken:
			tok := z.Token()
			p.handleStartTag(tok, voidTags[tok.Data])
		case html.SelfClosingTagToken:
			p.handleStartTag(z.Token(), true)
		case html.EndTagToken:
			p.handleEndTag(z.Token().Data)
		case html.TextToken:
			p.handleText(z.Token().Data)
		}
	}
}

// Items は確定済みの品を出現順で返す。未確定の品があれば先に確定する
func (p *Parser) Items() []menu.Item {
	p.commit()
	out := make([]menu.Item, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Parser) handleStartTag(tok html.Token, void bool) {
	tag := tok.Data

	if rowTags[tag] || isEntryContainer(tag, tok.Attr) {
		p.commit()
	}

	heading := !void && p.headingMarker != "" && hasClass(tok.Attr, p.headingMarker)
	if heading {
		p.commit()
	}

	r := roleNone
	if price, ok := dataPrice(tok.Attr); ok {
		p.price, p.hasPrice = price, true
	} else {
		r = detectRole(tok.Attr)
	}

	if void {
		return
	}

	p.stack = append(p.stack, frame{tag: tag, role: r})

	if heading {
		id, _ := attrValue(tok.Attr, "id")
		p.headingDepth = len(p.stack) - 1
		p.headingID = id
		p.headingCaptured = false
		if label, ok := p.labels[id]; ok && id != "" {
			p.currentCategory = menu.CanonicalCategory(label)
			p.headingCaptured = true
		}
	}
}

func (p *Parser) handleEndTag(tag string) {
	// 対応する開始タグまで戻る。対応がなければ無視する
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].tag == tag {
			p.stack = p.stack[:i]
			break
		}
	}

	if p.headingDepth >= len(p.stack) {
		p.headingDepth = -1
	}

	if rowEndTags[tag] {
		p.commit()
	}
}

func (p *Parser) handleText(data string) {
	if len(p.stack) > 0 && rawTextTags[p.stack[len(p.stack)-1].tag] {
		return
	}

	text := strings.TrimSpace(data)
	if text == "" {
		return
	}

	if p.headingDepth >= 0 {
		if !p.headingCaptured {
			p.currentCategory = menu.CanonicalCategory(strings.Fields(text)[0])
			p.headingCaptured = true
		}
		return
	}

	switch p.currentRole() {
	case roleName:
		// 価格が確定済みなら、フラットに並んだ次の品の始まりとみなす
		if p.hasPrice && len(p.nameParts) > 0 {
			p.commit()
		}
		p.nameParts = append(p.nameParts, text)
	case rolePrice:
		price, ok := parsePriceText(text)
		if !ok {
			return
		}
		p.price, p.hasPrice = price, true
		if len(p.nameParts) > 0 {
			p.commit()
		}
	}
}

// currentRole は最も内側の役割を返す
func (p *Parser) currentRole() role {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].role != roleNone {
			return p.stack[i].role
		}
	}
	return roleNone
}

// commit は品名と価格が揃っていれば品を確定し、途中状態をリセットする
func (p *Parser) commit() {
	name := strings.TrimSpace(strings.Join(p.nameParts, " "))
	if name != "" && p.hasPrice {
		item := menu.NewItem(name, p.price, p.itemCategory())
		if _, dup := p.seen[item.Key()]; !dup {
			p.seen[item.Key()] = struct{}{}
			p.items = append(p.items, item)
		}
	}

	p.nameParts = nil
	p.price, p.hasPrice = 0, false
}

func (p *Parser) itemCategory() string {
	if p.category != "" {
		return p.category
	}
	return p.currentCategory
}
