// scheduler — необязательный встроенный запуск оркестратора по cron-выражению.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/pkg/log"
	"github.com/robfig/cron/v3"
)

// Runner — один прогон приёма новостей.
type Runner interface {
	RunIngest(ctx context.Context) (*models.IngestReport, error)
}

// Start регистрирует прогон по spec и блокируется до отмены ctx.
//
// Особенности:
//   - пересекающиеся прогоны пропускаются (следующий тик ждёт окончания текущего);
//   - ошибки прогона только логируются;
//   - при остановке дожидается завершения запущенного прогона.
func Start(ctx context.Context, spec string, r Runner) error {
	const op = "scheduler.Start"

	lg := log.Op(ctx, op)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(spec, func() {
		report, err := r.RunIngest(ctx)
		if err != nil {
			lg.Warn("scheduled_run_error", slog.String("err", err.Error()))
			return
		}
		lg.Info("scheduled_run_ok",
			slog.Int("ingested", report.Ingested),
			slog.Int("processed", len(report.Processed)),
		)
	})
	if err != nil {
		return fmt.Errorf("%s: bad spec %q: %w", op, spec, err)
	}

	lg.Info("scheduler_start", slog.String("spec", spec))
	c.Start()

	<-ctx.Done()

	<-c.Stop().Done()
	lg.Info("scheduler_stop")
	return nil
}
