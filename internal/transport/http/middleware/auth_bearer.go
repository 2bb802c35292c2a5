package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pribylovaa/news-digest/internal/models"
	logctx "github.com/pribylovaa/news-digest/pkg/log"
)

// Verifier проверяет bearer-токен администратора.
type Verifier interface {
	Verify(token string) (models.Principal, error)
}

// AuthBearer извлекает Bearer-токен из Authorization.
//
// Особенности:
//   - «сырой» токен всегда кладётся в контекст (его сверяет cron-эндпойнт);
//   - если токен проходит проверку, в контекст кладётся Principal;
//   - запрос не отклоняется: решение о доступе принимает сервисный слой.
func AuthBearer(v Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearer(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxToken, token)

			if v != nil {
				p, err := v.Verify(token)
				if err == nil {
					ctx = context.WithValue(ctx, ctxPrincipal, p)
					ctx = logctx.With(ctx, slog.String("actor", p.UserID))
				} else {
					logctx.From(ctx).Debug("bearer_rejected", slog.String("err", err.Error()))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(h string) string {
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
