package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"MarketPulse/internal/model"
)

func newTestNotifier(srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", nil)
	n.Client.SetBaseURL(srv.URL)
	n.Backoff = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["chat_id"] != "42" || body["parse_mode"] != "HTML" || body["text"] != "hi" {
			t.Errorf("unexpected payload %v", body)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := newTestNotifier(srv).Send(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendWithRetry_RecoversAfterFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	if err := newTestNotifier(srv).SendWithRetry(context.Background(), "hi", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestNotifier(srv).SendWithRetry(context.Background(), "hi", 2)
	if err == nil || !strings.Contains(err.Error(), "retries exhausted") {
		t.Errorf("expected exhausted error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestPollOnce_DispatchesCommands(t *testing.T) {
	var replies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getUpdates") {
			w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /help "}},{"update_id":8}]}`))
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		replies = append(replies, body["text"])
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var got []string
	next, err := newTestNotifier(srv).PollOnce(context.Background(), 0, 0, func(_ context.Context, cmd string) string {
		got = append(got, cmd)
		return "reply:" + cmd
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != 9 {
		t.Errorf("expected next offset 9, got %d", next)
	}
	if len(got) != 1 || got[0] != "/help" {
		t.Errorf("expected one trimmed command, got %v", got)
	}
	if len(replies) != 1 || replies[0] != "reply:/help" {
		t.Errorf("expected one reply, got %v", replies)
	}
}

func TestFormatRanking(t *testing.T) {
	res := model.PeriodResult{
		Period: model.Period{Label: "Q1", Year: 2024,
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		Ranked:  []model.RankedChange{{Symbol: "AAA", PercentChange: 10}, {Symbol: "BBB", PercentChange: -2.5}},
		Cached:  1,
		Fetched: 1,
	}
	out := FormatRanking(res)
	for _, want := range []string{"Q1 2024", "2024-01-01", "+10.00%", "-2.50%", "1 cached"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatMatrix(t *testing.T) {
	m := &model.ChangeMatrix{
		Symbols: []string{"AAA"},
		Periods: []model.Period{{Label: "FY", Year: 2023}},
		Rows:    map[string][]float64{"AAA": {12.345}},
	}
	out := FormatMatrix(m)
	if !strings.Contains(out, "2023") || !strings.Contains(out, "+12.35%") {
		t.Errorf("unexpected matrix output:\n%s", out)
	}
}
