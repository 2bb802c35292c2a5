package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/pkg/httpfetch"
	"github.com/stretchr/testify/require"
)

const rssDoc = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item><link>https://mofa.gov.lr/about/1/</link><pubDate>Mon, 06 Jan 2025 10:00:00 GMT</pubDate></item>
<item><link>https://mofa.gov.lr/about/1</link></item>
<item><link>/relative/2</link></item>
</channel></rss>`

func newSite(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for p, h := range routes {
		mux.HandleFunc(p, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newDiscoverer(opts Options) *Discoverer {
	return New(httpfetch.New(nil, "liberia-chinese-news-bot/1.0", 2*time.Second), opts)
}

func strptr(s string) *string { return &s }

// Лента доверенная: без фильтра, но с канонизацией и дедупликацией.
func TestDiscover_FeedTrustedCanonicalDeduped(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]func(http.ResponseWriter, *http.Request){
		"/feed.xml": func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(rssDoc)) },
	})

	got := newDiscoverer(Options{}).Discover(context.Background(), models.NewsSource{
		Name: "mofa", Website: srv.URL, FeedURL: strptr(srv.URL + "/feed.xml"),
	})

	require.Len(t, got, 2)
	require.Equal(t, "https://mofa.gov.lr/about/1", got[0].URL)
	require.NotNil(t, got[0].PublishedAt)
	require.Equal(t, srv.URL+"/relative/2", got[1].URL)
	require.Nil(t, got[1].PublishedAt)
}

// Лента недоступна -> разбор главной страницы.
func TestDiscover_FeedFailsFallsBackToHTML(t *testing.T) {
	t.Parallel()

	var srvURL string
	srv := newSite(t, map[string]func(http.ResponseWriter, *http.Request){
		"/feed.xml": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		"/": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "liberia-chinese-news-bot/1.0", r.Header.Get("User-Agent"))
			fmt.Fprintf(w, `<html><body>
<a href="/press/123">a</a>
<a href="/press/123/">dup by slash</a>
<a href="%s/press/124?utm_source=x">abs</a>
<a href="/press/125#top">fragment</a>
<a href="/about">about</a>
<a href="https://other.example/press/1">foreign</a>
<a href="mailto:x@y.z">mail</a>
<a>no href</a>
</body></html>`, srvURL)
		},
	})
	srvURL = srv.URL

	got := newDiscoverer(Options{}).Discover(context.Background(), models.NewsSource{
		Name: "mofa", Website: srv.URL + "/", FeedURL: strptr(srv.URL + "/feed.xml"),
	})

	urls := make([]string, 0, len(got))
	for _, l := range got {
		require.Nil(t, l.PublishedAt)
		urls = append(urls, l.URL)
	}
	require.Equal(t, []string{srv.URL + "/press/123", srv.URL + "/press/124"}, urls)
}

func TestDiscover_MaxLinksCap(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]func(http.ResponseWriter, *http.Request){
		"/": func(w http.ResponseWriter, _ *http.Request) {
			var b strings.Builder
			for i := 0; i < 20; i++ {
				fmt.Fprintf(&b, `<a href="/news/%d">n</a>`, i)
			}
			_, _ = w.Write([]byte(b.String()))
		},
	})

	got := newDiscoverer(Options{MaxLinks: 5}).Discover(context.Background(), models.NewsSource{Website: srv.URL})
	require.Len(t, got, 5)
	require.Equal(t, srv.URL+"/news/0", got[0].URL)
}

func TestDiscover_CustomFilter(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]func(http.ResponseWriter, *http.Request){
		"/": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<a href="/about">a</a><a href="/x">x</a>`))
		},
	})

	got := newDiscoverer(Options{Filter: AcceptAll}).Discover(context.Background(), models.NewsSource{Website: srv.URL})
	require.Len(t, got, 2)
}

func TestDiscover_SiteFailureIsEmpty(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]func(http.ResponseWriter, *http.Request){
		"/": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) },
	})

	d := newDiscoverer(Options{})
	require.Empty(t, d.Discover(context.Background(), models.NewsSource{Website: srv.URL}))
	require.Empty(t, d.Discover(context.Background(), models.NewsSource{Website: "http://127.0.0.1:1"}))
}
