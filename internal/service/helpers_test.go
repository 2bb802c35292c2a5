package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pribylovaa/news-digest/internal/config"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/pkg/httpfetch"
	"github.com/pribylovaa/news-digest/internal/storage"
)

// Общие заглушки для unit-тестов сервисного слоя.
// Хранилище мокается gomock (mocks.MockStorage), остальные зависимости — простыми stub-ами.

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() config.Config {
	return config.Config{
		Crawler: config.CrawlerConfig{MaxPageBytes: 1 << 20},
		Pipeline: config.PipelineConfig{
			BatchSize:       5,
			MinExcerpt:      200,
			ItemTimeout:     time.Minute,
			RunTimeout:      5 * time.Minute,
			ProcessingLease: 10 * time.Minute,
		},
		RateLimits: config.RateLimitsConfig{
			IngestLimit: 10, IngestWindow: 10 * time.Minute,
			SyncLimit: 3, SyncWindow: 10 * time.Minute,
			ReprocessLimit: 5, ReprocessWindow: 5 * time.Minute,
		},
		Limits: config.LimitsConfig{Default: 12, Max: 100},
		Site:   config.SiteConfig{FeedSize: 30},
		Cron:   config.CronConfig{Secret: "cron-secret", GithubSecret: "gh-secret"},
	}
}

// newSvcForTest — фабрика Service с контролируемым cfg и временем.
func newSvcForTest(t *testing.T, st storage.Storage, deps Deps) *Service {
	t.Helper()
	if deps.Now == nil {
		deps.Now = func() time.Time { return fixedNow }
	}
	return New(st, testConfig(), deps)
}

var admin = models.Principal{UserID: "admin-1", Role: models.RoleAdmin}

// stubFetcher отдаёт заранее заданные страницы по URL.
type stubFetcher struct {
	pages map[string]*httpfetch.Page
	errs  map[string]error
}

func (f *stubFetcher) Get(_ context.Context, url string, _ int64) (*httpfetch.Page, error) {
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if p, ok := f.pages[url]; ok {
		return p, nil
	}
	return nil, &httpfetch.StatusError{URL: url, StatusCode: 404}
}

func htmlPage(body string) *httpfetch.Page {
	return &httpfetch.Page{Body: []byte(body), ContentType: "text/html; charset=utf-8", StatusCode: 200}
}

// stubSummarizer считает вызовы и возвращает фиксированный результат.
type stubSummarizer struct {
	mu    sync.Mutex
	calls int
	res   *models.Summary
	err   error
	panic bool
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string, _ *string) (*models.Summary, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panic {
		panic("summarizer exploded")
	}
	return s.res, s.err
}

func (s *stubSummarizer) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// blockingSummarizer ждёт отмены контекста и возвращает её причину.
type blockingSummarizer struct{}

func (blockingSummarizer) Summarize(ctx context.Context, _ string, _ *string) (*models.Summary, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// stubImages записывает запрошенные имена.
type stubImages struct {
	mu      sync.Mutex
	targets []string
	result  *string
}

func (i *stubImages) Archive(_ context.Context, _, targetName string) *string {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.targets = append(i.targets, targetName)
	return i.result
}

func (i *stubImages) PublicURL(p *string) *string {
	if p == nil {
		return nil
	}
	u := "https://cdn.example.org/news-images/" + *p
	return &u
}

type stubDiscoverer struct {
	links map[string][]models.DiscoveredLink
}

func (d *stubDiscoverer) Discover(_ context.Context, src models.NewsSource) []models.DiscoveredLink {
	return d.links[src.Website]
}

// stubLimiter разрешает первые allow вызовов по каждому ключу.
type stubLimiter struct {
	mu    sync.Mutex
	allow int
	seen  map[string]int
	err   error
}

func (l *stubLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.seen == nil {
		l.seen = map[string]int{}
	}
	l.seen[key]++
	return l.seen[key] <= l.allow, nil
}

// articleHTML — страница статьи с og-метаданными и телом заданной длины.
func articleHTML(title string, paragraphs int) string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Site</title>`)
	fmt.Fprintf(&b, `<meta property="og:title" content="%s">`, title)
	b.WriteString(`<meta property="og:image" content="https://mofa.gov.lr/img/lead.jpg">`)
	b.WriteString(`<meta property="article:published_time" content="2025-05-30T08:00:00Z">`)
	b.WriteString(`</head><body><nav><a href="/">Home</a></nav><article><h1>`)
	b.WriteString(title)
	b.WriteString(`</h1>`)
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&b, `<p>Paragraph %d. The Ministry of Foreign Affairs announced new visa procedures for foreign investors, `+
			`including updated documentation requirements, revised processing times and guidance for business travellers.</p>`, i)
	}
	b.WriteString(`</article><footer>Footer</footer></body></html>`)
	return b.String()
}

func strPtr(s string) *string { return &s }
