package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Тесты меняют slog.Default(), поэтому t.Parallel() не используется.

func newSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFrom_DefaultWhenEmpty(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	def := newSilent()
	slog.SetDefault(def)

	require.Equal(t, def, From(context.Background()))
}

func TestIntoFrom_RoundTrip(t *testing.T) {
	l := newSilent()
	ctx := Into(context.Background(), l)

	require.Equal(t, l, From(ctx))
}

// Мусор под нашим ключом и nil-логгер не должны ломать From.
func TestFrom_WrongTypeOrNil(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })
	def := newSilent()
	slog.SetDefault(def)

	require.Equal(t, def, From(context.WithValue(context.Background(), ctxKey{}, "nope")))

	var nilLogger *slog.Logger
	require.Equal(t, def, From(context.WithValue(context.Background(), ctxKey{}, nilLogger)))
}

func TestInto_ShadowsParent(t *testing.T) {
	parentL, childL := newSilent(), newSilent()

	parent := Into(context.Background(), parentL)
	child := Into(parent, childL)

	require.Equal(t, childL, From(child))
	require.Equal(t, parentL, From(parent))
}

func TestWith_AddsAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := With(Into(context.Background(), base), "request_id", "r-1")
	From(ctx).Info("hello")

	require.Contains(t, buf.String(), "request_id=r-1")
	require.Contains(t, buf.String(), "msg=hello")
}

func TestWith_NoArgsKeepsContext(t *testing.T) {
	ctx := Into(context.Background(), newSilent())
	require.Equal(t, ctx, With(ctx))
}

func TestInto_PreservesCancellationAndDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	child := Into(parent, newSilent())

	cdl, ok := child.Deadline()
	require.True(t, ok)
	pdl, _ := parent.Deadline()
	require.WithinDuration(t, pdl, cdl, time.Millisecond)

	select {
	case <-child.Done():
		require.ErrorIs(t, child.Err(), context.DeadlineExceeded)
	case <-time.After(300 * time.Millisecond):
		t.Fatal("ожидали дедлайн у дочернего контекста")
	}
}

func TestOp_AddsOpAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	ctx := Into(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	Op(ctx, "service.Ingest", slog.String("actor", "admin-1")).Info("news_ingested")

	out := buf.String()
	require.Contains(t, out, "op=service.Ingest")
	require.Contains(t, out, "actor=admin-1")
	require.Contains(t, out, "msg=news_ingested")
}
