package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const chartAAA = `{"chart":{"result":[{"timestamp":[1704205800,1708011000,1711632600],
"indicators":{"quote":[{"open":[99,null,108],"high":[101,null,111],"low":[98,null,107],
"close":[100,null,110],"volume":[1000,null,1200]}]}}],"error":null}}`

const chartZB = `{"chart":{"result":[{"timestamp":[1704205800,1708011000,1711632600],
"indicators":{"quote":[{"open":[0,null,59],"high":[0,null,61],"low":[0,null,58],
"close":[0,null,60],"volume":[0,null,900]}]}}],"error":null}}`

func newYahooTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("period1") == "" || r.URL.Query().Get("period2") == "" {
			t.Errorf("expected period1/period2 query, got %s", r.URL.RawQuery)
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/AAA"):
			w.Write([]byte(chartAAA))
		case strings.HasSuffix(r.URL.Path, "/ZB"):
			w.Write([]byte(chartZB))
		case strings.HasSuffix(r.URL.Path, "/EMPTY"):
			w.Write([]byte(`{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
		}
	}))
}

func TestYahooFetcher_Window(t *testing.T) {
	srv := newYahooTestServer(t)
	defer srv.Close()

	f := NewYahooFetcher("")
	f.Client.SetBaseURL(srv.URL)

	w, err := f.FetchWindow(context.Background(), "AAA", day(2024, 1, 1), day(2024, 3, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.FirstClose != 100 || w.LastClose != 110 {
		t.Errorf("expected first=100 last=110, got %+v", w)
	}

	bars, err := f.FetchDailyBars(context.Background(), "AAA", day(2024, 1, 1), day(2024, 3, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Errorf("expected null bar to be skipped, got %d bars", len(bars))
	}
}

func TestYahooFetcher_EmptyAndMissing(t *testing.T) {
	srv := newYahooTestServer(t)
	defer srv.Close()

	f := NewYahooFetcher("")
	f.Client.SetBaseURL(srv.URL)

	if _, err := f.FetchWindow(context.Background(), "EMPTY", day(2024, 1, 1), day(2024, 3, 31)); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	_, err := f.FetchWindow(context.Background(), "GONE", day(2024, 1, 1), day(2024, 3, 31))
	if err == nil || !strings.Contains(err.Error(), "delisted") {
		t.Errorf("expected api error, got %v", err)
	}
}

func TestYahooFetcher_ZeroCloseIsKeptNullIsDropped(t *testing.T) {
	srv := newYahooTestServer(t)
	defer srv.Close()

	f := NewYahooFetcher("")
	f.Client.SetBaseURL(srv.URL)

	bars, err := f.FetchDailyBars(context.Background(), "ZB", day(2024, 1, 1), day(2024, 3, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 || bars[0].Close != 0 || bars[1].Close != 60 {
		t.Fatalf("expected bars [0 60], got %+v", bars)
	}

	w, err := f.FetchWindow(context.Background(), "ZB", day(2024, 1, 1), day(2024, 3, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.FirstClose != 0 {
		t.Errorf("expected zero first close, got %.2f", w.FirstClose)
	}
}
