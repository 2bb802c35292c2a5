package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/news-digest/pkg/log"
)

// Timeout ограничивает запрос бюджетом d. Если у запроса уже есть более ранний
// дедлайн, действует он. d <= 0 отключает мидлвар.
//
// Исчерпанный бюджет пишется в лог событием request_budget_exceeded; ответ
// формирует сам хендлер (service -> 504).
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logctx.From(ctx).LogAttrs(ctx, slog.LevelWarn, "request_budget_exceeded",
					slog.String("path", r.URL.Path),
					slog.Duration("budget", d),
				)
			}
		})
	}
}
