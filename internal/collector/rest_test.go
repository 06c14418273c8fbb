package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRESTFetcher_BearerAndBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("expected bearer auth, got %q", got)
		}
		if r.URL.Query().Get("start") != "2024-01-01" {
			t.Errorf("unexpected start %q", r.URL.Query().Get("start"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"timestamp":1711632600,"close":120},{"timestamp":1704205800,"close":80}]`))
	}))
	defer srv.Close()

	f, err := NewRESTFetcher(srv.URL, "secret", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, err := f.FetchWindow(context.Background(), "AAA", day(2024, 1, 1), day(2024, 3, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.FirstClose != 80 || w.LastClose != 120 {
		t.Errorf("expected bars sorted chronologically, got %+v", w)
	}
}
