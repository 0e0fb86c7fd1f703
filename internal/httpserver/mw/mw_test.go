package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/inframe/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRateLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:             2,
		RefillPerIPPerMin: 60,
		Now:               func() time.Time { return now },
	})(okHandler)

	do := func(remote string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/custom-frames/bookmark", nil)
		r.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do("1.1.1.1:1000"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d status = %d, want 204", i, rec.Code)
		}
	}

	rec := do("1.1.1.1:1000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}

	// other clients have their own bucket
	if rec := do("2.2.2.2:1000"); rec.Code != http.StatusNoContent {
		t.Errorf("other client status = %d, want 204", rec.Code)
	}

	// one token refills per second
	now = now.Add(time.Second)
	if rec := do("1.1.1.1:1000"); rec.Code != http.StatusNoContent {
		t.Errorf("status after refill = %d, want 204", rec.Code)
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		remote  string
		want    int
	}{
		{"passthrough when empty", nil, "8.8.8.8:1", http.StatusNoContent},
		{"allowed cidr", []string{"10.0.0.0/8"}, "10.1.2.3:1", http.StatusNoContent},
		{"rejected", []string{"10.0.0.0/8"}, "8.8.8.8:1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS(tt.allowed, false, logger.Nop())(okHandler)
			r := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			r.RemoteAddr = tt.remote
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
