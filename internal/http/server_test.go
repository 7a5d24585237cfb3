package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "github.com/brohem/BudgedBuddy/internal/log"
)

type fakeProcessor struct {
	reply string
	err   error
	calls []string
}

func (f *fakeProcessor) HandleTurn(_ context.Context, sender, body string) (string, error) {
	f.calls = append(f.calls, sender+"|"+body)
	return f.reply, f.err
}

func newTestServer(proc TurnProcessor) *Server {
	return NewServer(":0", proc, applog.New(applog.DefaultConfig()))
}

func postForm(t *testing.T, s *Server, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/bot", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestInboundTurn(t *testing.T) {
	proc := &fakeProcessor{reply: "✅ Budget set to $1000.00."}
	s := newTestServer(proc)
	defer s.rateLimiter.stop()

	rec := postForm(t, s, url.Values{"From": {"+15550001000"}, "Body": {"setbudget 1000"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/xml")
	assert.Contains(t, rec.Body.String(), "<Response>")
	assert.Contains(t, rec.Body.String(), "<Message>✅ Budget set to $1000.00.</Message>")
	require.Len(t, proc.calls, 1)
	assert.Equal(t, "+15550001000|setbudget 1000", proc.calls[0])
}

func TestInboundTurnErrorStillReplies(t *testing.T) {
	proc := &fakeProcessor{reply: "⏳ try again", err: errors.New("contended")}
	s := newTestServer(proc)
	defer s.rateLimiter.stop()

	rec := postForm(t, s, url.Values{"From": {"+15550001000"}, "Body": {"addexpense 50 x"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "⏳ try again")
}

func TestInboundMissingSender(t *testing.T) {
	s := newTestServer(&fakeProcessor{reply: "hi"})
	defer s.rateLimiter.stop()

	rec := postForm(t, s, url.Values{"Body": {"status"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInboundMethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakeProcessor{reply: "hi"})
	defer s.rateLimiter.stop()

	req := httptest.NewRequest(http.MethodGet, "/bot", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
}

func TestInboundRateLimit(t *testing.T) {
	s := newTestServer(&fakeProcessor{reply: "ok"})
	defer s.rateLimiter.stop()

	form := url.Values{"From": {"+15550001000"}, "Body": {"status"}}
	var last *httptest.ResponseRecorder
	for i := 0; i <= maxTurnsPerMinute; i++ {
		last = postForm(t, s, form)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "60", last.Header().Get("Retry-After"))

	// Other senders are unaffected.
	rec := postForm(t, s, url.Values{"From": {"+15550002000"}, "Body": {"status"}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReplyEscaping(t *testing.T) {
	proc := &fakeProcessor{reply: "spent <half> & more"}
	s := newTestServer(proc)
	defer s.rateLimiter.stop()

	rec := postForm(t, s, url.Values{"From": {"+15550001000"}, "Body": {"status"}})
	assert.Contains(t, rec.Body.String(), "spent &lt;half&gt; &amp; more")
}

func TestRequestIDReachesHandlers(t *testing.T) {
	s := newTestServer(&fakeProcessor{})
	defer s.rateLimiter.stop()

	var got string
	h := s.withRequestLogging(func(w http.ResponseWriter, r *http.Request) {
		got = requestIDFrom(r.Context())
	})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/bot", nil))

	assert.NotEmpty(t, got)

	// A context that never passed the middleware yields no ID.
	assert.Empty(t, requestIDFrom(context.Background()))
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(&fakeProcessor{})
	defer s.rateLimiter.stop()

	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Body.String(), path)
	}
}
