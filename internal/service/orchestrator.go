package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/storage"
	"github.com/pribylovaa/news-digest/pkg/log"
)

// staleReason — текст error у элементов, возвращённых в очередь после истечения аренды.
const staleReason = "requeued after stale processing lease"

// RunIngest — один прогон оркестратора: обнаружение по всем активным источникам
// и обработка пачки старейших QUEUED-элементов.
//
// Особенности:
//   - сначала элементы, застрявшие в PROCESSING дольше аренды, возвращаются в очередь;
//   - источники и элементы обрабатываются последовательно;
//   - сбой обнаружения одного источника не влияет на остальные;
//   - повтор уже известного URL не ошибка и не учитывается в Ingested;
//   - прогон ограничен cfg.Pipeline.RunTimeout, отмена проверяется между элементами.
func (s *Service) RunIngest(ctx context.Context) (*models.IngestReport, error) {
	const op = "service.orchestrator.RunIngest"

	lg := log.Op(ctx, op)
	ctx = log.Into(ctx, lg)

	if budget := s.cfg.Pipeline.RunTimeout; budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	report := &models.IngestReport{Processed: []uuid.UUID{}}

	if lease := s.cfg.Pipeline.ProcessingLease; lease > 0 {
		n, err := s.storage.RequeueStale(ctx, s.now().Add(-lease), staleReason)
		if err != nil {
			lg.Warn("ingest_requeue_stale_failed", slog.String("err", err.Error()))
		} else if n > 0 {
			lg.Info("ingest_requeued_stale", slog.Int64("count", n))
		}
	}

	sources, err := s.storage.ActiveSources(ctx)
	if err != nil {
		lg.Error("ingest_sources_error", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("ingest_start", slog.Int("sources", len(sources)))

	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		report.Ingested += s.ingestSource(ctx, src)
	}
	s.deps.Metrics.ItemsIngested(report.Ingested)

	if ctx.Err() != nil {
		lg.Warn("ingest_budget_exhausted", slog.Int("ingested", report.Ingested))
		return report, nil
	}

	ids, err := s.storage.QueuedBatch(ctx, s.batchSize())
	if err != nil {
		lg.Error("ingest_queue_error", slog.String("err", err.Error()))
		return report, fmt.Errorf("%s: %w", op, err)
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			lg.Warn("ingest_budget_exhausted", slog.Int("processed", len(report.Processed)))
			break
		}
		s.ProcessItem(ctx, id)
		report.Processed = append(report.Processed, id)
	}

	lg.Info("ingest_done",
		slog.Int("ingested", report.Ingested),
		slog.Int("processed", len(report.Processed)),
	)

	return report, nil
}

// ingestSource ставит в очередь новые ссылки одного источника и возвращает их число.
func (s *Service) ingestSource(ctx context.Context, src models.NewsSource) int {
	lg := log.From(ctx).With(slog.String("source", src.Name))

	if s.deps.Discoverer == nil {
		return 0
	}

	links := s.deps.Discoverer.Discover(ctx, src)
	s.deps.Metrics.LinksDiscovered(src.Name, len(links))

	var created int
	for _, link := range links {
		if _, err := s.storage.CreateQueued(ctx, src.ID, link.URL, link.PublishedAt); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				continue
			}
			lg.Warn("ingest_create_failed", slog.String("url", link.URL), slog.String("err", err.Error()))
			continue
		}
		created++
	}

	lg.Info("ingest_source_done", slog.Int("links", len(links)), slog.Int("created", created))
	return created
}

func (s *Service) batchSize() int {
	if s.cfg.Pipeline.BatchSize > 0 {
		return s.cfg.Pipeline.BatchSize
	}
	return 5
}
