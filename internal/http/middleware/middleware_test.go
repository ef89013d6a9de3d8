package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/ticket-booking-client/internal/client"
	"github.com/pribylovaa/ticket-booking-client/pkg/log"
)

// capHandler — тестовый slog.Handler, который:
//   - аккумулирует базовые attrs, приходящие через Logger.With(...);
//   - собирает attrs последней записи в map[string]any.
type capHandler struct {
	mu      sync.Mutex
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

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
	h.lastLvl = r.Level
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()

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

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errEnvelope struct {
	Error apiError `json:"error"`
}

func TestChain_Order(t *testing.T) {
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
	var seenHeader, seenCtx string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenHeader = r.Header.Get(HeaderRequestID)
		seenCtx = client.RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, makeReq("/rid"))

	respID := rr.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(respID)
	require.NoError(t, err)

	require.Equal(t, respID, seenHeader)
	require.Equal(t, respID, seenCtx)
}

func TestRequestID_UseExisting(t *testing.T) {
	const given = "abc123-existing-id"
	var seenCtx string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenCtx = client.RequestIDFrom(r.Context())
	})

	rr := httptest.NewRecorder()
	req := makeReq("/rid2")
	req.Header.Set(HeaderRequestID, given)
	Chain(h, RequestID()).ServeHTTP(rr, req)

	require.Equal(t, given, rr.Header().Get(HeaderRequestID))
	require.Equal(t, given, seenCtx)
}

func TestLogging_RequestScopedLoggerAndAccessLog(t *testing.T) {
	capH := &capHandler{}
	var inner *slog.Logger

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = log.From(r.Context())
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	})

	rr := httptest.NewRecorder()
	req := makeReq("/logme")
	req.Header.Set(HeaderRequestID, "rid-42")
	Chain(h, Logging(slog.New(capH))).ServeHTTP(rr, req)

	require.NotNil(t, inner)
	require.Equal(t, 1, capH.count)
	require.Equal(t, "http", capH.lastMsg)
	require.Equal(t, slog.LevelInfo, capH.lastLvl)
	require.Equal(t, "rid-42", capH.attrs["request_id"])
	require.Equal(t, "/logme", capH.attrs["path"])
	require.EqualValues(t, http.StatusCreated, capH.attrs["status"])
	require.EqualValues(t, 5, capH.attrs["bytes"])
}

func TestLogging_ServerErrorsAreWarn(t *testing.T) {
	capH := &capHandler{}

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	Chain(h, Logging(slog.New(capH))).ServeHTTP(httptest.NewRecorder(), makeReq("/x"))

	require.Equal(t, slog.LevelWarn, capH.lastLvl)
	require.EqualValues(t, http.StatusBadGateway, capH.attrs["status"])
}

func TestLogging_EmptyHandlerIs200(t *testing.T) {
	capH := &capHandler{}

	Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), Logging(slog.New(capH))).
		ServeHTTP(httptest.NewRecorder(), makeReq("/noop"))

	require.EqualValues(t, http.StatusOK, capH.attrs["status"])
}

func TestRecover_PanicToInternal(t *testing.T) {
	capH := &capHandler{}

	h := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("secret details")
	})

	rr := httptest.NewRecorder()
	req := makeReq("/boom")
	req.Header.Set(HeaderRequestID, "rid-p")
	Chain(h, Logging(slog.New(capH)), Recover()).ServeHTTP(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "secret details")

	var env errEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "internal", env.Error.Code)
	require.Equal(t, "rid-p", env.Error.RequestID)
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var hasDeadline bool

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})

	Chain(h, Timeout(time.Second)).ServeHTTP(httptest.NewRecorder(), makeReq("/t"))
	require.True(t, hasDeadline)
}

func TestTimeout_ZeroIsNoop(t *testing.T) {
	var hasDeadline bool

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	})

	Chain(h, Timeout(0)).ServeHTTP(httptest.NewRecorder(), makeReq("/t"))
	require.False(t, hasDeadline)
}

func TestTimeout_KeepsExistingDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()
	want, _ := ctx.Deadline()

	var got time.Time
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Deadline()
	})

	Chain(h, Timeout(time.Millisecond)).ServeHTTP(httptest.NewRecorder(), makeReq("/t").WithContext(ctx))
	require.Equal(t, want, got)
}

func TestSession_IssuesCookie(t *testing.T) {
	var sid string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid = SessionID(r.Context())
	})

	rr := httptest.NewRecorder()
	Chain(h, Session(time.Hour)).ServeHTTP(rr, makeReq("/account"))

	_, err := uuid.Parse(sid)
	require.NoError(t, err)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieSession, cookies[0].Name)
	require.Equal(t, sid, cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, 3600, cookies[0].MaxAge)
}

func TestSession_ReusesValidCookie(t *testing.T) {
	const given = "7f3c3f0e-8a4c-4b8e-9d2a-0f8f6b1c2d3e"
	var sid string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid = SessionID(r.Context())
	})

	rr := httptest.NewRecorder()
	req := makeReq("/account")
	req.AddCookie(&http.Cookie{Name: CookieSession, Value: given})
	Chain(h, Session(time.Hour)).ServeHTTP(rr, req)

	require.Equal(t, given, sid)
	require.Empty(t, rr.Result().Cookies())
}

func TestSession_ReplacesForeignCookie(t *testing.T) {
	var sid string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid = SessionID(r.Context())
	})

	rr := httptest.NewRecorder()
	req := makeReq("/account")
	req.AddCookie(&http.Cookie{Name: CookieSession, Value: "../../etc/passwd"})
	Chain(h, Session(time.Hour)).ServeHTTP(rr, req)

	require.NotEqual(t, "../../etc/passwd", sid)
	require.Len(t, rr.Result().Cookies(), 1)
}

func TestSessionID_Outside(t *testing.T) {
	require.Empty(t, SessionID(context.Background()))
}
