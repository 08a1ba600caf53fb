package menufetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yayuyokano/meal-calculate/internal/domain/apperr"
	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
	"github.com/yayuyokano/meal-calculate/internal/infrastructure/fetch"
)

const (
	mainURL   = "https://west2-univ.jp/sp/menu.php?t=650111"
	fragmentA = "https://west2-univ.jp/sp/menu_load.php?t=650111&a=on_a"
	fragmentE = "https://west2-univ.jp/sp/menu_load.php?t=650111&a=on_e"
	fragmentC = "https://west2-univ.jp/sp/menu_load.php?t=650111&a=on_c"
)

const mainPage = `
<ul><li><span class="name">唐揚げ定食</span><span class="price">500円</span></li></ul>
<div class="toggle-title" id="on_a">主菜</div>
<div id="menu_on_a"></div>
<div class="toggle-title" id="on_e">ライス</div>
<ul><li><span class="name">ライス小</span><span class="price">66円</span></li></ul>
<script>
load("menu_load.php?t=650111&a=on_a");
load("menu_load.php?t=650111&a=on_e");
load("menu_load.php?t=650111&a=on_c");
</script>`

// fakeGetter はURLごとの応答を返す
type fakeGetter struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (g *fakeGetter) Get(ctx context.Context, url string) (fetch.Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, url)
	if err, ok := g.errs[url]; ok {
		return fetch.Document{}, err
	}
	body, ok := g.pages[url]
	if !ok {
		return fetch.Document{}, errors.New("http status: 404")
	}
	return fetch.Document{Body: body, URL: url}, nil
}

type fakeRenderer struct {
	doc   fetch.Document
	err   error
	calls int
}

func (r *fakeRenderer) Render(ctx context.Context, url string) (fetch.Document, error) {
	r.calls++
	return r.doc, r.err
}

func newSiteGetter() *fakeGetter {
	return &fakeGetter{
		pages: map[string]string{
			mainURL: mainPage,
			fragmentA: `<li><span class="name">唐揚げ定食</span><span class="price">500円</span></li>` +
				`<li><span class="name">チキン南蛮</span><span class="price">450円</span></li>`,
			fragmentE: `<li><span class="name">ライス小</span><span class="price">66円</span></li>` +
				`<li><span class="name">ライス大</span><span class="price">99円</span></li>`,
		},
		errs: map[string]error{
			fragmentC: errors.New("http status: 500"),
		},
	}
}

func TestFetcher_FetchMenu(t *testing.T) {
	getter := newSiteGetter()
	f := NewFetcher(getter, nil)

	items, err := f.FetchMenu(context.Background(), mainURL, false)

	require.NoError(t, err)
	assert.Equal(t, []menu.Item{
		{Name: "唐揚げ定食", Price: 500, Category: menu.CategoryMain},
		{Name: "ライス小", Price: 66, Category: menu.CategoryRice},
		{Name: "チキン南蛮", Price: 450, Category: menu.CategoryMain},
		{Name: "ライス大", Price: 99, Category: menu.CategoryRice},
	}, items)
	assert.Equal(t, []string{mainURL, fragmentA, fragmentE, fragmentC}, getter.calls)
}

func TestFetcher_FetchMenu_WithRenderer(t *testing.T) {
	renderer := &fakeRenderer{doc: fetch.Document{
		Body: `<li><span class="name">カツカレー</span><span class="price">520円</span></li>` +
			`<a onclick="load('menu_load.php?t=650112&amp;a=on_c')">麺類</a>`,
		URL: "https://west2-univ.jp/sp/menu.php?t=650112",
	}}
	getter := &fakeGetter{pages: map[string]string{
		"https://west2-univ.jp/sp/menu_load.php?t=650112&a=on_c": `<li><span class="name">きつねうどん</span><span class="price">280円</span></li>`,
	}}
	f := NewFetcher(getter, renderer)

	items, err := f.FetchMenu(context.Background(), "https://west2-univ.jp/sp/menu.php?t=650112", true)

	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, []menu.Item{
		{Name: "カツカレー", Price: 520},
		{Name: "きつねうどん", Price: 280, Category: menu.CategoryNoodle},
	}, items)
}

func TestFetcher_FetchMenu_Errors(t *testing.T) {
	tests := []struct {
		name        string
		getter      *fakeGetter
		renderer    PageRenderer
		useRenderer bool
		wantKind    apperr.Kind
	}{
		{
			name:        "ブラウザ描画なし",
			getter:      newSiteGetter(),
			renderer:    nil,
			useRenderer: true,
			wantKind:    apperr.KindRetrieval,
		},
		{
			name:        "描画失敗",
			getter:      newSiteGetter(),
			renderer:    &fakeRenderer{err: errors.New("browser crashed")},
			useRenderer: true,
			wantKind:    apperr.KindRetrieval,
		},
		{
			name:     "メインページ取得失敗",
			getter:   &fakeGetter{errs: map[string]error{mainURL: errors.New("connection refused")}},
			wantKind: apperr.KindRetrieval,
		},
		{
			name:     "品が0件",
			getter:   &fakeGetter{pages: map[string]string{mainURL: `<html><body>本日は休業です</body></html>`}},
			wantKind: apperr.KindExtractionEmpty,
		},
		{
			name: "フラグメントが全て失敗",
			getter: &fakeGetter{
				pages: map[string]string{mainURL: `<script>load("menu_load.php?t=650111&a=on_a")</script>`},
				errs:  map[string]error{fragmentA: errors.New("timeout")},
			},
			wantKind: apperr.KindExtractionEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFetcher(tt.getter, tt.renderer)

			items, err := f.FetchMenu(context.Background(), mainURL, tt.useRenderer)

			require.Error(t, err)
			assert.Nil(t, items)
			assert.True(t, apperr.Is(err, tt.wantKind), "kind of %v", err)
		})
	}
}

func TestFetcher_FetchMenu_WrapsRetrievalCause(t *testing.T) {
	cause := errors.New("connection refused")
	f := NewFetcher(&fakeGetter{errs: map[string]error{mainURL: cause}}, nil)

	_, err := f.FetchMenu(context.Background(), mainURL, false)

	assert.ErrorIs(t, err, cause)
}

func TestFetcher_FetchMenu_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(newSiteGetter(), nil)

	_, err := f.FetchMenu(ctx, mainURL, false)

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindRetrieval))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_FetchMenu_FragmentInterval(t *testing.T) {
	getter := newSiteGetter()
	f := NewFetcher(getter, nil, WithFragmentInterval(5*time.Millisecond))

	start := time.Now()
	items, err := f.FetchMenu(context.Background(), mainURL, false)

	require.NoError(t, err)
	assert.Len(t, items, 4)
	// 3件のフラグメントのうち2件目以降は間隔を空ける
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestFetcher_ToggleMarker(t *testing.T) {
	getter := &fakeGetter{pages: map[string]string{
		mainURL: `<h2 class="cat" id="x">麺類</h2><ul><li><span class="name">天ぷらそば</span><span class="price">400円</span></li></ul>`,
	}}
	f := NewFetcher(getter, nil, WithToggleMarker(".cat"))

	items, err := f.FetchMenu(context.Background(), mainURL, false)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, menu.CategoryNoodle, items[0].Category)
}

func TestFetcher_RendererAvailable(t *testing.T) {
	assert.False(t, NewFetcher(&fakeGetter{}, nil).RendererAvailable())
	assert.True(t, NewFetcher(&fakeGetter{}, &fakeRenderer{}).RendererAvailable())
}
