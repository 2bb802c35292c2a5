// Package archive сохраняет локальную копию ведущего изображения статьи
// в объектное хранилище (MinIO или S3) и строит публичные ссылки на неё.
package archive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/pribylovaa/news-digest/internal/pkg/httpfetch"
	"github.com/pribylovaa/news-digest/pkg/log"
)

// DefaultMaxBytes — потолок размера изображения.
const DefaultMaxBytes int64 = 2 << 20

// Store — объектное хранилище. Put перезаписывает существующий объект.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// PageFetcher — исходящий GET (см. httpfetch.Client).
type PageFetcher interface {
	Get(ctx context.Context, url string, limit int64) (*httpfetch.Page, error)
}

// Options — параметры архиватора.
type Options struct {
	Bucket        string
	Prefix        string
	PublicBaseURL string
	MaxBytes      int64
}

// Archiver скачивает изображения и кладёт их в Store.
// Archiver без Store всегда пропускает архивирование.
type Archiver struct {
	fetch PageFetcher
	store Store
	opts  Options
}

// New создаёт архиватор. store == nil -> хранилище не настроено.
func New(fetch PageFetcher, store Store, opts Options) *Archiver {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Prefix == "" {
		opts.Prefix = "news"
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &Archiver{fetch: fetch, store: store, opts: opts}
}

// Archive скачивает sourceURL и сохраняет под <prefix>/<targetName>.
// Возвращает путь в хранилище или nil, если картинка пропущена:
// статус не-2xx, тип не image/*, размер больше лимита, ошибка загрузки.
func (a *Archiver) Archive(ctx context.Context, sourceURL, targetName string) *string {
	const op = "archive.Archive"

	if a == nil || a.store == nil {
		return nil
	}

	lg := log.Op(ctx, op, slog.String("url", sourceURL))

	page, err := a.fetch.Get(ctx, sourceURL, a.opts.MaxBytes)
	if err != nil {
		if errors.Is(err, httpfetch.ErrTooLarge) {
			lg.Info("image_skipped", slog.String("reason", "too_large"))
		} else {
			lg.Info("image_skipped", slog.String("reason", "fetch"), slog.String("err", err.Error()))
		}
		return nil
	}

	ct := strings.ToLower(strings.TrimSpace(page.ContentType))
	if !strings.HasPrefix(ct, "image/") {
		lg.Info("image_skipped", slog.String("reason", "content_type"), slog.String("content_type", ct))
		return nil
	}

	key := path.Join(a.opts.Prefix, targetName)
	if err := a.store.Put(ctx, key, bytes.NewReader(page.Body), int64(len(page.Body)), page.ContentType); err != nil {
		lg.Warn("image_upload_failed", slog.String("key", key), slog.String("err", err.Error()))
		return nil
	}

	lg.Debug("image_archived", slog.String("key", key), slog.Int("bytes", len(page.Body)))
	return &key
}

// PublicURL — публичная ссылка на объект: <public_base>/<bucket>/<path>.
// nil, если хранилище не настроено или path пуст.
func (a *Archiver) PublicURL(p *string) *string {
	if a == nil || a.store == nil || a.opts.PublicBaseURL == "" || p == nil || *p == "" {
		return nil
	}
	u := a.opts.PublicBaseURL + "/" + a.opts.Bucket + "/" + strings.TrimLeft(*p, "/")
	return &u
}
