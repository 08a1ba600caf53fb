package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func TestHTTPGetter_Get(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		_, _ = w.Write([]byte(`<li class="name">カレー</li>`))
	}))
	defer server.Close()

	doc, err := NewHTTPGetter(WithUserAgent("test-agent")).Get(context.Background(), server.URL+"/sp/menu.php?t=650111")

	require.NoError(t, err)
	assert.Equal(t, `<li class="name">カレー</li>`, doc.Body)
	assert.Equal(t, server.URL+"/sp/menu.php?t=650111", doc.URL)
	assert.Equal(t, "test-agent", gotUA)
}

func TestHTTPGetter_DecodesShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String("<li>唐揚げ定食 500円</li>")
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
		_, _ = w.Write([]byte(encoded))
	}))
	defer server.Close()

	doc, err := NewHTTPGetter().Get(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "<li>唐揚げ定食 500円</li>", doc.Body)
}

func TestHTTPGetter_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/sp/menu.php?t=650112", http.StatusFound)
	})
	mux.HandleFunc("/sp/menu.php", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	doc, err := NewHTTPGetter().Get(context.Background(), server.URL+"/old")

	require.NoError(t, err)
	assert.Equal(t, server.URL+"/sp/menu.php?t=650112", doc.URL)
}

func TestHTTPGetter_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewHTTPGetter().Get(context.Background(), server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPGetter_Unreachable(t *testing.T) {
	_, err := NewHTTPGetter().Get(context.Background(), "http://127.0.0.1:1/menu.php")

	assert.Error(t, err)
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name        string
		raw         []byte
		contentType string
		want        string
		wantErr     bool
	}{
		{name: "指定なしはUTF-8", raw: []byte("ライス"), contentType: "text/html", want: "ライス"},
		{name: "Content-Typeなし", raw: []byte("ライス"), contentType: "", want: "ライス"},
		{name: "不正なバイト列は置換", raw: []byte{0xff, 'a'}, contentType: "text/html; charset=utf-8", want: "�a"},
		{name: "未知の文字コード", raw: []byte("a"), contentType: "text/html; charset=x-unknown", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBody(tt.raw, tt.contentType)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
