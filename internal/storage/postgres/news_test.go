package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/storage"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты хранилища:
// — поднимают PostgreSQL через testcontainers-go (postgres:16-alpine);
// — применяют миграцию 1_init_news.up.sql;
// — проверяют очередь, запись результата конвейера, правки, публичную и админскую выдачу.

// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// repoRootFromThisFile — корень репозитория относительно текущего файла тестов.
func repoRootFromThisFile() string {
	// internal/storage/postgres/... -> подняться на 3 уровня до корня.
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", ".."))
}

func readMigration(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(repoRootFromThisFile(), "migrations", name)
	b, err := os.ReadFile(path)
	require.NoError(t, err, "read migration %s", path)
	return string(b)
}

// startPostgres поднимает контейнер, применяет миграции и возвращает хранилище.
// Без GO_TEST_INTEGRATION тест пропускается.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, readMigration(t, "1_init_news.up.sql"))
	require.NoError(t, err)

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

func seedSource(t *testing.T, st *Storage, website string) models.NewsSource {
	t.Helper()
	src, err := st.UpsertSource(context.Background(), models.NewsSource{
		Name:     "Source " + website,
		Language: "en",
		Website:  website,
		IsActive: true,
	})
	require.NoError(t, err)
	return *src
}

func strPtr(s string) *string { return &s }

func TestIntegration_Sources_Upsert(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	ctx := context.Background()

	a := seedSource(t, st, "https://a.example.org")

	feed := "https://a.example.org/feed"
	again, err := st.UpsertSource(ctx, models.NewsSource{
		Name: "Renamed", Language: "en", Website: "https://a.example.org", FeedURL: &feed, IsActive: false,
	})
	require.NoError(t, err)
	require.Equal(t, a.ID, again.ID, "upsert by website must keep id")
	require.Equal(t, "Renamed", again.Name)
	require.Equal(t, feed, *again.FeedURL)

	active, err := st.ActiveSources(ctx)
	require.NoError(t, err)
	require.Empty(t, active)

	_, err = st.SourceByID(ctx, uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_Queue_And_PipelineUpdate(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	ctx := context.Background()

	src := seedSource(t, st, "https://q.example.org")

	first, err := st.CreateQueued(ctx, src.ID, "https://q.example.org/1", nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusQueued, first.Status)
	require.Equal(t, src.Name, first.SourceName)

	_, err = st.CreateQueued(ctx, src.ID, "https://q.example.org/1", nil)
	require.ErrorIs(t, err, storage.ErrConflict)

	_, err = st.CreateQueued(ctx, uuid.New(), "https://q.example.org/orphan", nil)
	require.ErrorIs(t, err, storage.ErrNotFound)

	second, err := st.CreateQueued(ctx, src.ID, "https://q.example.org/2", nil)
	require.NoError(t, err)

	ids, err := st.QueuedBatch(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{first.ID, second.ID}, ids)

	require.NoError(t, st.SetStatus(ctx, first.ID, models.StatusProcessing, nil))

	ids, err = st.QueuedBatch(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{second.ID}, ids)

	hash := "abc"
	sum := &models.Summary{
		SummaryBlock: models.SummaryBlock{Bullets: []string{"一"}, Paragraph: "段落"},
		WhyItMatters: "重要",
		Tags:         []string{"税务"},
		RiskFlags:    []string{"tax"},
	}
	pub := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.SavePipelineUpdate(ctx, first.ID, models.PipelineUpdate{
		Title:       strPtr("Headline"),
		PublishedAt: &pub,
		FetchedAt:   time.Now(),
		RawExcerpt:  "body",
		Status:      models.StatusReady,
		ContentHash: &hash,
		Summary:     sum,
		ImagePath:   strPtr("news/x.jpg"),
	}))

	got, err := st.ItemByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusReady, got.Status)
	require.Equal(t, "Headline", *got.Title)
	require.True(t, pub.Equal(*got.PublishedAt))
	require.Equal(t, `{"bullets":["一"],"paragraph":"段落"}`, *got.SummaryZh)
	require.Equal(t, []string{"税务"}, got.Tags)
	require.Equal(t, []string{"tax"}, got.RiskFlags)
	require.Equal(t, "news/x.jpg", *got.ImagePath)

	// Без сводки и хэша прежние значения сохраняются.
	require.NoError(t, st.SavePipelineUpdate(ctx, first.ID, models.PipelineUpdate{
		FetchedAt:  time.Now(),
		RawExcerpt: "body 2",
		Status:     models.StatusFailed,
		Error:      strPtr("boom"),
	}))
	got, err = st.ItemByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusFailed, got.Status)
	require.Equal(t, "boom", *got.Error)
	require.Equal(t, "abc", *got.ContentHash)
	require.Equal(t, `{"bullets":["一"],"paragraph":"段落"}`, *got.SummaryZh)
	require.Nil(t, got.Title)

	byURL, err := st.ItemByURL(ctx, "https://q.example.org/2")
	require.NoError(t, err)
	require.Equal(t, second.ID, byURL.ID)

	err = st.SetStatus(ctx, uuid.New(), models.StatusQueued, nil)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_RequeueStale(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	ctx := context.Background()

	src := seedSource(t, st, "https://s.example.org")
	it, err := st.CreateQueued(ctx, src.ID, "https://s.example.org/1", nil)
	require.NoError(t, err)
	require.NoError(t, st.SetStatus(ctx, it.ID, models.StatusProcessing, nil))

	n, err := st.RequeueStale(ctx, time.Now().Add(-time.Hour), "lease expired")
	require.NoError(t, err)
	require.Zero(t, n)

	page, err := st.ListAdmin(ctx, models.AdminFilter{Stuck: true, StuckBefore: time.Now().Add(time.Minute), Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	n, err = st.RequeueStale(ctx, time.Now().Add(time.Minute), "lease expired")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := st.ItemByID(ctx, it.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusQueued, got.Status)
	require.Equal(t, "lease expired", *got.Error)
}

func TestIntegration_UpdateItem_And_Delete(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	ctx := context.Background()

	src := seedSource(t, st, "https://e.example.org")
	it, err := st.CreateQueued(ctx, src.ID, "https://e.example.org/1", nil)
	require.NoError(t, err)

	hidden := true
	now := time.Now().UTC()
	require.NoError(t, st.UpdateItem(ctx, it.ID, models.ItemEdit{
		TitleOverride: models.SetTo("Manual"),
		TagsOverride:  models.SetTo([]string{"a", "b"}),
		IsHidden:      &hidden,
		EditedBy:      "admin-1",
		EditedAt:      now,
	}))

	got, err := st.ItemByID(ctx, it.ID)
	require.NoError(t, err)
	require.Equal(t, "Manual", *got.TitleOverride)
	require.Equal(t, []string{"a", "b"}, got.TagsOverride)
	require.True(t, got.IsHidden)
	require.Equal(t, "admin-1", *got.EditedByUserID)

	require.NoError(t, st.UpdateItem(ctx, it.ID, models.ItemEdit{
		TitleOverride: models.Clear[string](),
		TagsOverride:  models.Clear[[]string](),
		EditedBy:      "admin-2",
		EditedAt:      now,
	}))
	got, err = st.ItemByID(ctx, it.ID)
	require.NoError(t, err)
	require.Nil(t, got.TitleOverride)
	require.Empty(t, got.TagsOverride)
	require.True(t, got.IsHidden, "unset fields stay untouched")

	err = st.UpdateItem(ctx, uuid.New(), models.ItemEdit{EditedBy: "x", EditedAt: now})
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, st.DeleteItem(ctx, it.ID))
	require.ErrorIs(t, st.DeleteItem(ctx, it.ID), storage.ErrNotFound)

	_, err = st.CreateQueued(ctx, src.ID, "https://e.example.org/2", nil)
	require.NoError(t, err)
	_, err = st.CreateQueued(ctx, src.ID, "https://e.example.org/3", nil)
	require.NoError(t, err)
	n, err := st.DeleteAllItems(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestIntegration_ListPublic_Filters_And_Paging(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	ctx := context.Background()

	srcA := seedSource(t, st, "https://la.example.org")
	srcB := seedSource(t, st, "https://lb.example.org")

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	mk := func(src models.NewsSource, path string, pub time.Time, tags []string) uuid.UUID {
		it, err := st.CreateQueued(ctx, src.ID, src.Website+path, nil)
		require.NoError(t, err)
		require.NoError(t, st.SavePipelineUpdate(ctx, it.ID, models.PipelineUpdate{
			PublishedAt: &pub,
			FetchedAt:   base,
			RawExcerpt:  "x",
			Status:      models.StatusReady,
			Summary:     &models.Summary{Tags: tags},
		}))
		return it.ID
	}

	id1 := mk(srcA, "/1", base.Add(-1*time.Hour), []string{"tax"})
	id2 := mk(srcA, "/2", base.Add(-2*time.Hour), []string{"trade"})
	id3 := mk(srcB, "/3", base.Add(-3*time.Hour), []string{"tax"})

	// Скрытый и незавершённый элементы в ленту не попадают.
	hidden := true
	id4 := mk(srcB, "/4", base, nil)
	require.NoError(t, st.UpdateItem(ctx, id4, models.ItemEdit{IsHidden: &hidden, EditedBy: "a", EditedAt: base}))
	_, err := st.CreateQueued(ctx, srcB.ID, srcB.Website+"/5", nil)
	require.NoError(t, err)

	// Override даты поднимает id3 наверх.
	override := base.Add(time.Hour)
	require.NoError(t, st.UpdateItem(ctx, id3, models.ItemEdit{
		PublishedAtOverride: models.SetTo(override), EditedBy: "a", EditedAt: base,
	}))

	page, err := st.ListPublic(ctx, models.ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, id3, page.Items[0].ID)
	require.Equal(t, id1, page.Items[1].ID)
	require.NotEmpty(t, page.NextPageToken)

	page2, err := st.ListPublic(ctx, models.ListFilter{Limit: 2, PageToken: page.NextPageToken})
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	require.Equal(t, id2, page2.Items[0].ID)
	require.Empty(t, page2.NextPageToken)

	bySource, err := st.ListPublic(ctx, models.ListFilter{SourceID: &srcA.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, bySource.Items, 2)

	byTag, err := st.ListPublic(ctx, models.ListFilter{Tag: "tax", Limit: 10})
	require.NoError(t, err)
	require.Len(t, byTag.Items, 2)

	start := base.Add(-90 * time.Minute)
	end := base
	byRange, err := st.ListPublic(ctx, models.ListFilter{Start: &start, End: &end, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byRange.Items, 1)
	require.Equal(t, id1, byRange.Items[0].ID)

	_, err = st.ListPublic(ctx, models.ListFilter{Limit: 2, PageToken: "%%%"})
	require.ErrorIs(t, err, storage.ErrInvalidCursor)

	admin, err := st.ListAdmin(ctx, models.AdminFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, admin.Items, 5)

	queued := models.StatusQueued
	adminQueued, err := st.ListAdmin(ctx, models.AdminFilter{Status: &queued, Limit: 10})
	require.NoError(t, err)
	require.Len(t, adminQueued.Items, 1)
}

func TestIntegration_AppendAudit(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, st.AppendAudit(ctx, models.AuditEntry{
		ActorUserID: "admin-1",
		Action:      models.AuditEdit,
		EntityType:  models.AuditEntityNews,
		EntityID:    uuid.NewString(),
		Detail:      "Edited",
		Metadata:    map[string]any{"fields": []string{"titleOverride"}},
	}))
	require.NoError(t, st.AppendAudit(ctx, models.AuditEntry{
		ActorUserID: "admin-1",
		Action:      models.AuditDeleteAll,
		EntityType:  models.AuditEntityNews,
		EntityID:    models.AuditEntityAll,
	}))
}
