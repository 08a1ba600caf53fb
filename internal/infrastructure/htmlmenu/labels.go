package htmlmenu

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/yayuyokano/meal-calculate/internal/domain/cafeteria"
	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
)

// DefaultToggleMarker はカテゴリ見出しに付くclass
const DefaultToggleMarker = "toggle-title"

const categoryCodePrefix = "on_"

var fragmentRefPattern = regexp.MustCompile(`[^"'\s<>()]*menu_load\.php\?[^"'\s<>()]*`)

// DefaultCategoryLabels は組み込みのカテゴリコード → ラベル表を返す
func DefaultCategoryLabels() map[string]string {
	return map[string]string{
		"on_a": menu.CategoryMain,
		"on_b": menu.CategorySide,
		"on_c": menu.CategoryNoodle,
		"on_d": menu.CategoryDonCurry,
		"on_e": menu.CategoryRice,
		"on_f": menu.CategoryDessert,
		"on_g": menu.CategoryOrder,
		"on_h": menu.CategoryKebabVeggie,
	}
}

// ResolveCategoryLabels は文書中のカテゴリ見出しからコード → ラベル表を作る
// 見出しで見つかったラベルは組み込みの表を上書きする
func ResolveCategoryLabels(doc string, marker string) map[string]string {
	if marker == "" {
		marker = DefaultToggleMarker
	}

	labels := DefaultCategoryLabels()

	z := html.NewTokenizer(strings.NewReader(doc))
	var (
		pendingID string
		depth     int
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return labels
		}

		switch tt {
		case html.StartTagToken:
			tok := z.Token()
			if pendingID != "" {
				if !voidTags[tok.Data] {
					depth++
				}
				continue
			}
			id, _ := attrValue(tok.Attr, "id")
			if id != "" && hasClass(tok.Attr, marker) && !voidTags[tok.Data] {
				pendingID = id
				depth = 1
			}
		case html.EndTagToken:
			if pendingID == "" {
				continue
			}
			depth--
			if depth <= 0 {
				pendingID = ""
			}
		case html.TextToken:
			if pendingID == "" {
				continue
			}
			fields := strings.Fields(string(z.Text()))
			if len(fields) == 0 {
				continue
			}
			labels[pendingID] = menu.CanonicalCategory(fields[0])
			pendingID = ""
		}
	}
}

// LookupFragmentCategory はフラグメントURLの a= パラメータからカテゴリを引く
// 不明なコードは空文字
func LookupFragmentCategory(endpoint string, labels map[string]string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	code := u.Query().Get("a")
	if code == "" {
		return ""
	}

	if label, ok := labels[code]; ok {
		return label
	}
	if strings.HasPrefix(code, categoryCodePrefix) {
		if label, ok := labels[strings.TrimPrefix(code, categoryCodePrefix)]; ok {
			return label
		}
		return ""
	}
	if label, ok := labels[categoryCodePrefix+code]; ok {
		return label
	}
	return ""
}

// DiscoverFragmentEndpoints は文書中の menu_load.php 参照を base 基準の絶対URLにして返す
// 出現順で重複を除く
func DiscoverFragmentEndpoints(doc, base string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		baseURL = &url.URL{}
	}

	seen := make(map[string]struct{})
	endpoints := make([]string, 0)
	for _, ref := range fragmentRefPattern.FindAllString(doc, -1) {
		resolved, ok := resolveRef(baseURL, html.UnescapeString(ref))
		if !ok {
			continue
		}
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		endpoints = append(endpoints, resolved)
	}
	return endpoints
}

// DiscoverCafeterias は menu.php?t= へのリンクから食堂一覧を作る
// IDはクエリの t、名前はリンクテキスト。IDで重複を除く
func DiscoverCafeterias(doc, base string) []cafeteria.Cafeteria {
	baseURL, err := url.Parse(base)
	if err != nil {
		baseURL = &url.URL{}
	}

	seen := make(map[string]struct{})
	found := make([]cafeteria.Cafeteria, 0)

	z := html.NewTokenizer(strings.NewReader(doc))
	var (
		inAnchor bool
		href     string
		text     []string
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return found
		}

		switch tt {
		case html.StartTagToken:
			tok := z.Token()
			if tok.Data != "a" {
				continue
			}
			v, _ := attrValue(tok.Attr, "href")
			inAnchor, href, text = true, v, nil
		case html.TextToken:
			if inAnchor {
				text = append(text, strings.Fields(string(z.Text()))...)
			}
		case html.EndTagToken:
			if !inAnchor || z.Token().Data != "a" {
				continue
			}
			inAnchor = false

			name := strings.Join(text, " ")
			if name == "" || !strings.Contains(href, "menu.php?t=") {
				continue
			}
			resolved, ok := resolveRef(baseURL, href)
			if !ok {
				continue
			}
			u, err := url.Parse(resolved)
			if err != nil {
				continue
			}
			id := u.Query().Get("t")
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			found = append(found, cafeteria.Cafeteria{ID: id, Name: name})
		}
	}
}

func resolveRef(base *url.URL, ref string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	return base.ResolveReference(u).String(), true
}
