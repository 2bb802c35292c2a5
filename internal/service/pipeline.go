package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pribylovaa/news-digest/internal/extract"
	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/pkg/contenthash"
	"github.com/pribylovaa/news-digest/internal/storage"
	"github.com/pribylovaa/news-digest/pkg/log"
)

const (
	// errTooShort — отдельное терминальное состояние: извлечённые метаданные сохраняются.
	errTooShort = "Extracted content too short"
	// errProcessing — текст по умолчанию, если у ошибки нет сообщения.
	errProcessing = "Processing failed"
	// errSummarizerMissing — суммаризатор не подключён.
	errSummarizerMissing = "Summarizer is not configured"
	// imageExt — архивированная картинка хранится как <id>.jpg.
	imageExt = ".jpg"
	// finalWriteTimeout — бюджет итоговой записи элемента, отдельный от бюджета прогона.
	finalWriteTimeout = 5 * time.Second
)

// ProcessItem прогоняет один элемент через конвейер:
// QUEUED/FAILED/READY -> PROCESSING -> READY | FAILED.
//
// Особенности:
//   - отсутствующий элемент -> OutcomeMissing без изменений в хранилище;
//   - любые ошибки и паники превращаются в status=FAILED + error и наружу не выходят;
//   - суммаризатор вызывается, только если сводки нет или хэш текста изменился;
//   - ошибка суммаризатора не отменяет запись новых метаданных и хэша;
//   - у прогона собственный бюджет времени cfg.Pipeline.ItemTimeout.
func (s *Service) ProcessItem(ctx context.Context, id uuid.UUID) (res models.ProcessResult) {
	const op = "service.pipeline.ProcessItem"

	started := time.Now()
	lg := log.Op(ctx, op, slog.String("id", id.String()))
	ctx = log.Into(ctx, lg)

	res.ID = id
	defer func() {
		s.deps.Metrics.PipelineOutcome(string(res.Outcome), time.Since(started))
	}()

	if budget := s.cfg.Pipeline.ItemTimeout; budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	item, err := s.storage.ItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("process_item_missing")
			res.Outcome = models.OutcomeMissing
			return res
		}
		return s.fail(ctx, id, err.Error())
	}

	if err := s.storage.SetStatus(ctx, id, models.StatusProcessing, nil); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			res.Outcome = models.OutcomeMissing
			return res
		}
		return s.fail(ctx, id, err.Error())
	}

	defer func() {
		if r := recover(); r != nil {
			lg.Error("process_item_panic", slog.Any("panic", r))
			res = s.fail(ctx, id, fmt.Sprintf("panic: %v", r))
		}
	}()

	return s.process(ctx, item)
}

// process — шаги 3–9 конвейера для загруженного элемента.
func (s *Service) process(ctx context.Context, item *models.NewsItem) models.ProcessResult {
	lg := log.From(ctx)

	page, err := s.deps.Fetcher.Get(ctx, item.URL, s.cfg.Crawler.MaxPageBytes)
	if err != nil {
		lg.Warn("process_fetch_failed", slog.String("url", item.URL), slog.String("err", err.Error()))
		return s.fail(ctx, item.ID, err.Error())
	}

	ex := extract.Extract(string(page.Body), item.URL)

	upd := models.PipelineUpdate{
		Title:       firstNonNil(ex.Title, item.Title),
		PublishedAt: firstNonNil(ex.PublishedAt, item.PublishedAt),
		FetchedAt:   s.now(),
		OGImageURL:  firstNonNil(ex.OGImageURL, item.OGImageURL),
		RawExcerpt:  ex.Excerpt,
	}

	if ex.Excerpt == "" || utf8.RuneCountInString(ex.Excerpt) < s.cfg.Pipeline.MinExcerpt {
		lg.Info("process_excerpt_too_short", slog.Int("runes", utf8.RuneCountInString(ex.Excerpt)))
		msg := errTooShort
		upd.Status = models.StatusFailed
		upd.Error = &msg
		return s.save(ctx, item.ID, upd)
	}

	hash := contenthash.Sum(ex.Excerpt)
	upd.ContentHash = &hash

	var summarizeErr *string
	if !item.HasSummary() || item.ContentHash == nil || *item.ContentHash != hash {
		sum, err := s.summarize(ctx, ex.Excerpt, ex.Title)
		if err != nil {
			lg.Warn("process_summarize_failed", slog.String("err", err.Error()))
			s.deps.Metrics.SummarizerCall("error")
			msg := err.Error()
			summarizeErr = &msg
		} else {
			s.deps.Metrics.SummarizerCall("ok")
			upd.Summary = sum
		}
	} else {
		lg.Debug("process_summary_unchanged")
		s.deps.Metrics.SummarizerCall("skipped")
	}

	if item.ImagePath == nil && ex.OGImageURL != nil && s.deps.Images != nil && ctx.Err() == nil {
		upd.ImagePath = s.deps.Images.Archive(ctx, *ex.OGImageURL, item.ID.String()+imageExt)
	}

	upd.Status = models.StatusReady
	if summarizeErr != nil {
		upd.Status = models.StatusFailed
		upd.Error = summarizeErr
	}

	return s.save(ctx, item.ID, upd)
}

func (s *Service) summarize(ctx context.Context, excerpt string, title *string) (*models.Summary, error) {
	if s.deps.Summarizer == nil {
		return nil, errors.New(errSummarizerMissing)
	}
	return s.deps.Summarizer.Summarize(ctx, excerpt, title)
}

// save пишет итог прогона одной командой. Запись идёт в отдельном контексте:
// извлечённые метаданные сохраняются, даже если бюджет прогона уже истёк.
func (s *Service) save(ctx context.Context, id uuid.UUID, upd models.PipelineUpdate) models.ProcessResult {
	lg := log.From(ctx)

	wctx, cancel := finalWriteContext(ctx)
	defer cancel()

	if err := s.storage.SavePipelineUpdate(wctx, id, upd); err != nil {
		lg.Error("process_save_failed", slog.String("err", err.Error()))
		return s.fail(ctx, id, err.Error())
	}

	res := models.ProcessResult{ID: id, Outcome: models.OutcomeReady}
	if upd.Status == models.StatusFailed {
		res.Outcome = models.OutcomeFailed
		if upd.Error != nil {
			res.Error = *upd.Error
		}
	}

	lg.Info("process_item_done", slog.String("status", string(upd.Status)))
	return res
}

// fail переводит элемент в FAILED. Запись идёт в отдельном контексте, как и в save.
func (s *Service) fail(ctx context.Context, id uuid.UUID, msg string) models.ProcessResult {
	if msg == "" {
		msg = errProcessing
	}

	wctx, cancel := finalWriteContext(ctx)
	defer cancel()

	if err := s.storage.SetStatus(wctx, id, models.StatusFailed, &msg); err != nil {
		log.From(ctx).Error("process_mark_failed_error", slog.String("err", err.Error()))
	}

	return models.ProcessResult{ID: id, Outcome: models.OutcomeFailed, Error: msg}
}

// finalWriteContext отвязывает итоговую запись от отмены ctx (бюджет элемента,
// запрос, RunTimeout), сохраняя значения контекста.
func finalWriteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), finalWriteTimeout)
}

func firstNonNil[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
