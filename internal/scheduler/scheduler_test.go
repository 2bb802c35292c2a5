package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) RunIngest(context.Context) (*models.IngestReport, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &models.IngestReport{}, nil
}

func TestStart_BadSpec(t *testing.T) {
	t.Parallel()

	err := Start(context.Background(), "every now and then", &countingRunner{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad spec")
}

// TestStart_RunsAndStops — тики вызывают прогон, отмена ctx завершает Start.
func TestStart_RunsAndStops(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"ok", nil},
		{"run errors are swallowed", errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			r := &countingRunner{err: tt.err}

			done := make(chan error, 1)
			go func() { done <- Start(ctx, "@every 1s", r) }()

			require.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)

			cancel()
			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Fatal("scheduler did not stop")
			}
		})
	}
}
