package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/lunchbot/internal/config"
	"github.com/dgallion1/lunchbot/internal/fetch"
	"github.com/dgallion1/lunchbot/internal/pipeline"
)

const testKey = "secret"

const menuPage = `<div id="center_text"><b>Grill</b><span>Burger</span><span>8.00</span></div>`

type staticSource struct {
	page string
	err  error
}

func (s staticSource) Fetch(context.Context, time.Time, int) ([]byte, error) {
	return []byte(s.page), s.err
}

type recordingPoster struct{ texts []string }

func (p *recordingPoster) PostMessage(_ context.Context, _, text string) error {
	p.texts = append(p.texts, text)
	return nil
}

func newTestServer(t *testing.T, src pipeline.MenuSource, poster pipeline.Poster) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		APIKey:          testKey,
		MenuContainerID: "center_text",
		SlackChannel:    "#lunch",
		DiscountRate:    0.6,
		RunTTL:          time.Hour,
		Timezone:        "UTC",
	}
	runner, err := pipeline.NewRunner(cfg, src, poster, nil, log)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return NewServer(runner, fetch.NewStats(time.Minute), log, cfg)
}

func do(t *testing.T, s *Server, method, target string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if auth {
		req.Header.Set("Authorization", "Bearer "+testKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, staticSource{page: menuPage}, nil)
	rec := do(t, s, http.MethodGet, "/health", false)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, staticSource{page: menuPage}, nil)

	rec := do(t, s, http.MethodGet, "/api/stats", false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}
}

func TestMenuPreview_Text(t *testing.T) {
	s := newTestServer(t, staticSource{page: menuPage}, nil)
	rec := do(t, s, http.MethodGet, "/api/menu?date=2026-10-14", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	want := "*Grill*\nBurger\n~$8.00~ $4.80\n"
	if rec.Body.String() != want {
		t.Errorf("expected %q, got %q", want, rec.Body.String())
	}
}

func TestMenuPreview_HTML(t *testing.T) {
	s := newTestServer(t, staticSource{page: menuPage}, nil)
	rec := do(t, s, http.MethodGet, "/api/menu?date=2026-10-14&format=html", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<title>Lunch for Wednesday, October 14</title>", "$4.80"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in body:\n%s", want, body)
		}
	}
}

func TestMenuPreview_BadRequests(t *testing.T) {
	s := newTestServer(t, staticSource{page: menuPage}, nil)
	for _, target := range []string{
		"/api/menu?date=2026-10-17",
		"/api/menu?date=10/14/2026",
		"/api/menu?date=2026-10-14&format=pdf",
	} {
		if rec := do(t, s, http.MethodGet, target, true); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestMenuPreview_UpstreamFailure(t *testing.T) {
	s := newTestServer(t, staticSource{err: errors.New("timeout")}, nil)
	rec := do(t, s, http.MethodGet, "/api/menu?date=2026-10-14", true)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestRunAndStatus(t *testing.T) {
	poster := &recordingPoster{}
	s := newTestServer(t, staticSource{page: menuPage}, poster)

	rec := do(t, s, http.MethodPost, "/api/run?date=2026-10-14", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var snap pipeline.RunSnapshot
	decode(t, rec, &snap)
	if snap.Status != pipeline.StatusCompleted || snap.Sections != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if len(poster.texts) != 1 {
		t.Errorf("expected one post, got %d", len(poster.texts))
	}

	rec = do(t, s, http.MethodGet, "/api/runs/"+snap.ID, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got pipeline.RunSnapshot
	decode(t, rec, &got)
	if got.ID != snap.ID || got.Status != pipeline.StatusCompleted {
		t.Errorf("unexpected status snapshot %+v", got)
	}

	if rec := do(t, s, http.MethodGet, "/api/runs/nope", true); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRun_DryRunAndWeekend(t *testing.T) {
	poster := &recordingPoster{}
	s := newTestServer(t, staticSource{page: menuPage}, poster)

	var snap pipeline.RunSnapshot
	rec := do(t, s, http.MethodPost, "/api/run?date=2026-10-14&dry_run=true", true)
	decode(t, rec, &snap)
	if snap.Status != pipeline.StatusDryRun || !snap.DryRun {
		t.Errorf("expected dry run, got %+v", snap)
	}

	rec = do(t, s, http.MethodPost, "/api/run?date=2026-10-18", true)
	decode(t, rec, &snap)
	if rec.Code != http.StatusOK || snap.Status != pipeline.StatusSkipped {
		t.Errorf("expected skipped weekend run, got %d %+v", rec.Code, snap)
	}
	if len(poster.texts) != 0 {
		t.Errorf("expected no posts, got %d", len(poster.texts))
	}

	if rec := do(t, s, http.MethodPost, "/api/run?dry_run=maybe", true); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad dry_run, got %d", rec.Code)
	}
}

func TestRun_FailureReturnsSnapshot(t *testing.T) {
	s := newTestServer(t, staticSource{page: `<div id="center_text"><p>closed</p></div>`}, &recordingPoster{})
	rec := do(t, s, http.MethodPost, "/api/run?date=2026-10-14", true)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var snap pipeline.RunSnapshot
	decode(t, rec, &snap)
	if snap.Status != pipeline.StatusFailed || len(snap.Errors) == 0 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestStats(t *testing.T) {
	page := `<div id="center_text"><b>Grill</b><span>Burger</span><span>8.00</span><br><b>orphan</b></div>`
	s := newTestServer(t, staticSource{page: page}, nil)
	do(t, s, http.MethodGet, "/api/menu?date=2026-10-14", true)

	rec := do(t, s, http.MethodGet, "/api/stats", true)
	var body struct {
		Dropped int64               `json:"dropped_blocks_total"`
		Fetch   *fetch.StatsSnapshot `json:"fetch"`
	}
	decode(t, rec, &body)
	if body.Fetch == nil {
		t.Error("expected fetch stats")
	}
	if body.Dropped != 1 {
		t.Errorf("expected one dropped block, got %d", body.Dropped)
	}
}
