package httpfetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGet_OK_SendsUserAgent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "bot/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	t.Cleanup(srv.Close)

	c := New(nil, "bot/1.0", time.Second)
	p, err := c.Get(context.Background(), srv.URL, 0)
	require.NoError(t, err)
	require.Equal(t, "<html>ok</html>", string(p.Body))
	require.Equal(t, "text/html; charset=utf-8", p.ContentType)
	require.Equal(t, http.StatusOK, p.StatusCode)
}

func TestGet_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(srv.Close)

	_, err := New(nil, "", time.Second).Get(context.Background(), srv.URL, 0)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusGone, se.StatusCode)
	require.Equal(t, "Fetch failed: 410", err.Error())
}

func TestGet_TooLarge(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// без Content-Length: потоковая отдача.
		w.Header().Set("Transfer-Encoding", "chunked")
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	t.Cleanup(srv.Close)

	c := New(nil, "", time.Second)

	_, err := c.Get(context.Background(), srv.URL, 10)
	require.True(t, errors.Is(err, ErrTooLarge))

	p, err := c.Get(context.Background(), srv.URL, 64)
	require.NoError(t, err)
	require.Len(t, p.Body, 64)
}

func TestGet_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	_, err := New(nil, "", 50*time.Millisecond).Get(context.Background(), srv.URL, 0)
	require.Error(t, err)
}
