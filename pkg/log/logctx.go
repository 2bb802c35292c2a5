// Package log переносит *slog.Logger через context.Context.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста (или возвращает slog.Default()).
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}

	return slog.Default()
}

// Op — логгер из контекста с атрибутом op и дополнительными атрибутами.
// Каждая операция сервиса пишет события через него.
func Op(ctx context.Context, op string, attrs ...slog.Attr) *slog.Logger {
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("op", op))
	for _, a := range attrs {
		args = append(args, a)
	}
	return From(ctx).With(args...)
}

// With дополняет логгер из контекста атрибутами и кладёт результат обратно.
// Так запрос накапливает контекст (request_id, actor) для нижних слоёв.
func With(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}

	return Into(ctx, From(ctx).With(args...))
}
