package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/news-digest/internal/metrics"
	"github.com/pribylovaa/news-digest/internal/models"
	logctx "github.com/pribylovaa/news-digest/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// capHandler — тестовый slog.Handler, который:
//   - аккумулирует базовые attrs, приходящие через Logger.With(...);
//   - собирает attrs из каждой записи в map[string]any.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	attrs   map[string]any
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)

	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.count++
	h.lastMsg = r.Message
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) > 0 {
		h.base = append(h.base, attrs...)
	}

	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func makeReq(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = (&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}).String()
	return req
}

type errEnvelope struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

type stubVerifier struct {
	tokens map[string]models.Principal
}

func (v stubVerifier) Verify(token string) (models.Principal, error) {
	if p, ok := v.tokens[token]; ok {
		return p, nil
	}
	return models.Principal{}, errors.New("invalid token")
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	order := []string{}

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m1-end")
		})
	}

	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m2-end")
		})
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	Chain(final, m1, m2).ServeHTTP(rr, makeReq("/chain"))

	require.Equal(t, []string{"m1-begin", "m2-begin", "handler", "m2-end", "m1-end"}, order)
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	t.Parallel()

	var seenID, seenCtxID string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = r.Header.Get("X-Request-Id")
		seenCtxID = RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, makeReq("/rid"))

	respID := rr.Header().Get("X-Request-Id")
	_, err := uuid.Parse(respID)
	require.NoError(t, err)
	require.Equal(t, respID, seenID)
	require.Equal(t, respID, seenCtxID)
}

func TestRequestID_UseExisting(t *testing.T) {
	t.Parallel()

	const given = "abc123-existing-id"
	var seenCtxID string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenCtxID = RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := makeReq("/rid2")
	req.Header.Set("X-Request-Id", given)
	Chain(h, RequestID()).ServeHTTP(rr, req)

	require.Equal(t, given, rr.Header().Get("X-Request-Id"))
	require.Equal(t, given, seenCtxID)
}

func TestRequestID_ReplacesUnsafeIncoming(t *testing.T) {
	t.Parallel()

	for _, given := range []string{"has space", "line\nbreak", strings.Repeat("a", 65)} {
		rr := httptest.NewRecorder()
		req := makeReq("/rid3")
		req.Header.Set("X-Request-Id", given)
		Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), RequestID()).ServeHTTP(rr, req)

		got := rr.Header().Get("X-Request-Id")
		require.NotEqual(t, given, got)
		_, err := uuid.Parse(got)
		require.NoError(t, err)
	}
}

func TestAuthBearer(t *testing.T) {
	t.Parallel()

	admin := models.Principal{UserID: "admin-1", Role: models.RoleAdmin}
	v := stubVerifier{tokens: map[string]models.Principal{"good": admin}}

	tests := []struct {
		name      string
		header    string
		wantToken string
		wantP     models.Principal
	}{
		{"no header", "", "", models.Principal{}},
		{"basic auth", "Basic aaa", "", models.Principal{}},
		{"bare prefix", "Bearer ", "", models.Principal{}},
		{"verified", "Bearer good", "good", admin},
		{"lowercase scheme", "bearer good", "good", admin},
		{"unverified keeps raw token", "Bearer cron-secret", "cron-secret", models.Principal{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotToken string
			var gotP models.Principal
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotToken = TokenFrom(r.Context())
				gotP = PrincipalFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := makeReq("/auth")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			Chain(h, AuthBearer(v)).ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			require.Equal(t, tt.wantToken, gotToken)
			require.Equal(t, tt.wantP, gotP)
		})
	}
}

func TestTimeout_SetsDeadline_WhenAbsent(t *testing.T) {
	t.Parallel()

	var hasDeadline bool
	var left time.Duration

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dl, ok := r.Context().Deadline()
		hasDeadline = ok
		if ok {
			left = time.Until(dl)
		}
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	Chain(h, Timeout(50*time.Millisecond)).ServeHTTP(rr, makeReq("/timeout"))

	require.True(t, hasDeadline)
	require.Greater(t, left, time.Duration(0))
}

func TestTimeout_DoesNotOverrideExistingDeadline(t *testing.T) {
	t.Parallel()

	var childDL time.Time

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		childDL, _ = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	})

	parent, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := makeReq("/timeout2").WithContext(parent)

	rr := httptest.NewRecorder()
	Chain(h, Timeout(time.Second)).ServeHTTP(rr, req)

	parentDL, _ := parent.Deadline()
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestTimeout_LogsExceededBudget(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	req := makeReq("/slow")
	req = req.WithContext(logctx.Into(req.Context(), slog.New(h)))
	Chain(slow, Timeout(10*time.Millisecond)).ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "request_budget_exceeded", h.lastMsg)
	require.Equal(t, "/slow", h.attrs["path"])
	require.Equal(t, 10*time.Millisecond, h.attrs["budget"])
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	t.Parallel()

	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	req := makeReq("/panic")
	req.Header.Set("X-Request-Id", "rid-9")
	Chain(panicHandler, Recover()).ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.NotContains(t, rr.Body.String(), "boom")

	var env errEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "internal", env.Error.Code)
	require.Equal(t, "rid-9", env.Error.RequestID)
}

func TestLogging_WritesRecord_WithStatusDurBytesAndRequestID(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	logger := slog.New(h)

	const rid = "rid-456"
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Не вызываем WriteHeader — статус должен стать 200 после Write.
		_, _ = w.Write([]byte("0123456789"))
	})

	// RequestID до Logging, чтобы id попал в attrs лога.
	handler := Chain(final, RequestID(), Logging(logger))

	rr := httptest.NewRecorder()
	req := makeReq("/log")
	req.Header.Set("X-Request-Id", rid)
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, h.count)
	require.Equal(t, "http", h.lastMsg)

	require.Equal(t, http.MethodGet, h.attrs["method"])
	require.Equal(t, "/log", h.attrs["path"])
	require.EqualValues(t, http.StatusOK, h.attrs["status"])
	require.EqualValues(t, 10, h.attrs["bytes"])
	require.Equal(t, rid, h.attrs["request_id"])

	_, hasDur := h.attrs["dur"]
	require.True(t, hasDur)
}

func TestLogging_NoWriteCountsAs200(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	final := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	Chain(final, Logging(slog.New(h))).ServeHTTP(httptest.NewRecorder(), makeReq("/empty"))

	require.EqualValues(t, http.StatusOK, h.attrs["status"])
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/news/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), makeReq("/news/"+id))
	}

	const want = `
# HELP news_digest_http_requests_total HTTP requests by route pattern, method and status.
# TYPE news_digest_http_requests_total counter
news_digest_http_requests_total{method="GET",route="/news/{id}",status="404"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "news_digest_http_requests_total"))
}

func TestStatusWriter_CountsBytes_AndDefaultStatus200(t *testing.T) {
	t.Parallel()

	sw := newStatusWriter(httptest.NewRecorder())
	_, _ = sw.Write([]byte("abcd"))

	require.Equal(t, http.StatusOK, sw.status)
	require.Equal(t, 4, sw.count)
}
