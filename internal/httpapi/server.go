// Package httpapi serves percent changes, stock lists, the portfolio and
// the calculators over JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"MarketPulse/internal/aggregator"
	"MarketPulse/internal/calculator"
	"MarketPulse/internal/collector"
	"MarketPulse/internal/compare"
	"MarketPulse/internal/logging"
	"MarketPulse/internal/model"
	"MarketPulse/internal/period"
	"MarketPulse/internal/portfolio"
	"MarketPulse/internal/store"
)

// maxTrailing caps the quarters/years query parameters and the length of a periods list.
const maxTrailing = 40

// maxFundamentals caps the symbols of one fundamentals request; each is a remote call.
const maxFundamentals = 50

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves the HTTP API. Lists, Portfolio, Comparer, Fundamentals and
// Health are optional; their routes answer 404 when unset.
type Server struct {
	Aggregator   *aggregator.Aggregator
	Lists        store.ListStore
	Portfolio    *portfolio.Manager
	Comparer     *compare.Comparer
	Fundamentals collector.FundamentalsSource
	Health       Pinger
	Watchlist    []string
	Log          *zap.SugaredLogger
}

// NewServer creates a Server around the aggregator.
func NewServer(agg *aggregator.Aggregator, watchlist []string, log *zap.SugaredLogger) *Server {
	return &Server{Aggregator: agg, Watchlist: watchlist, Log: logging.OrNop(log)}
}

// Handler returns the router with recovery, request logging and CORS.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/changes", s.handleChanges)
		r.Get("/matrix", s.handleMatrix)

		r.Get("/lists", s.handleListNames)
		r.Get("/lists/{name}", s.handleGetList)
		r.Put("/lists/{name}", s.handlePutList)
		r.Delete("/lists/{name}", s.handleDeleteList)

		r.Get("/portfolio", s.handlePortfolio)
		r.Post("/portfolio/holdings", s.handleAddHolding)
		r.Delete("/portfolio/holdings/{id}", s.handleRemoveHolding)

		r.Get("/calc/cagr", s.handleCAGR)
		r.Get("/calc/compound", s.handleCompound)
		r.Get("/compare", s.handleCompare)
		r.Get("/fundamentals", s.handleFundamentals)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Log.Debugw("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeErr maps domain errors onto status codes.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrListNotFound), errors.Is(err, store.ErrHoldingNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, period.ErrUnknownLabel):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.Log.Errorf("request failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.Health != nil {
		if err := s.Health.Ping(r.Context()); err != nil {
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// symbols resolves ?list= or ?symbols=, defaulting to the watchlist.
func (s *Server) symbols(r *http.Request) ([]string, error) {
	q := r.URL.Query()
	if name := q.Get("list"); name != "" {
		if s.Lists == nil {
			return nil, store.ErrListNotFound
		}
		l, err := s.Lists.LoadList(r.Context(), name)
		if err != nil {
			return nil, err
		}
		return l.Tickers, nil
	}
	if raw := q.Get("symbols"); raw != "" {
		return store.NormalizeTickers([]string{raw}), nil
	}
	return s.Watchlist, nil
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	label, year := q.Get("period"), q.Get("year")
	if label == "" || year == "" {
		s.writeError(w, http.StatusBadRequest, "period and year are required")
		return
	}
	p, err := period.ResolveString(label, year)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	symbols, err := s.symbols(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	m, err := s.Aggregator.Aggregate(r.Context(), symbols, []model.Period{p})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m.Results[0])
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbols, err := s.symbols(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	var periods []model.Period
	switch {
	case q.Get("periods") != "":
		periods, err = period.ParseList(q.Get("periods"))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(periods) > maxTrailing {
			s.writeError(w, http.StatusBadRequest, "at most 40 periods per request")
			return
		}
	case q.Get("years") != "":
		n, ok := s.countParam(w, q.Get("years"))
		if !ok {
			return
		}
		periods = s.Aggregator.Resolver.LastYears(n)
	default:
		n := 4
		if raw := q.Get("quarters"); raw != "" {
			var ok bool
			if n, ok = s.countParam(w, raw); !ok {
				return
			}
		}
		periods = s.Aggregator.Resolver.LastQuarters(n)
	}
	if len(periods) == 0 {
		s.writeError(w, http.StatusBadRequest, "no periods requested")
		return
	}

	m, err := s.Aggregator.Aggregate(r.Context(), symbols, periods)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

func (s *Server) countParam(w http.ResponseWriter, raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxTrailing {
		s.writeError(w, http.StatusBadRequest, "count must be between 1 and 40")
		return 0, false
	}
	return n, true
}

func (s *Server) handleListNames(w http.ResponseWriter, r *http.Request) {
	if s.Lists == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"lists": []string{}})
		return
	}
	names, err := s.Lists.ListNames(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"lists": names})
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	if s.Lists == nil {
		s.writeError(w, http.StatusNotFound, "lists are not configured")
		return
	}
	l, err := s.Lists.LoadList(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, l)
}

func (s *Server) handlePutList(w http.ResponseWriter, r *http.Request) {
	if s.Lists == nil {
		s.writeError(w, http.StatusNotFound, "lists are not configured")
		return
	}
	var body struct {
		Tickers []string `json:"tickers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.Lists.SaveList(r.Context(), name, body.Tickers); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, model.StockList{Name: name, Tickers: store.NormalizeTickers(body.Tickers)})
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if s.Lists == nil {
		s.writeError(w, http.StatusNotFound, "lists are not configured")
		return
	}
	if err := s.Lists.DeleteList(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if s.Portfolio == nil {
		s.writeError(w, http.StatusNotFound, "portfolio is not configured")
		return
	}
	sum, err := s.Portfolio.Performance(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sum)
}

type addHoldingRequest struct {
	Ticker        string          `json:"ticker"`
	Shares        decimal.Decimal `json:"shares"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PurchaseDate  string          `json:"purchase_date"`
}

func (s *Server) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	if s.Portfolio == nil {
		s.writeError(w, http.StatusNotFound, "portfolio is not configured")
		return
	}
	var req addHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	purchased := time.Now().UTC().Truncate(24 * time.Hour)
	if req.PurchaseDate != "" {
		t, err := time.Parse(model.DateLayout, req.PurchaseDate)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "purchase_date must be YYYY-MM-DD")
			return
		}
		purchased = t
	}
	h, err := s.Portfolio.Add(r.Context(), req.Ticker, req.Shares, req.PurchasePrice, purchased)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, h)
}

func (s *Server) handleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	if s.Portfolio == nil {
		s.writeError(w, http.StatusNotFound, "portfolio is not configured")
		return
	}
	if err := s.Portfolio.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// floatParams parses the named query parameters as floats.
func floatParams(r *http.Request, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			return nil, errors.New(name + " is required")
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New(name + " must be a number")
		}
		out[i] = v
	}
	return out, nil
}

func (s *Server) handleCAGR(w http.ResponseWriter, r *http.Request) {
	v, err := floatParams(r, "start", "end", "years")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rate, err := calculator.CAGR(v[0], v[1], v[2])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{
		"cagr":         rate,
		"cagr_percent": rate * 100,
	})
}

func (s *Server) handleCompound(w http.ResponseWriter, r *http.Request) {
	v, err := floatParams(r, "principal", "rate", "years")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	contribution := 0.0
	if raw := q.Get("contribution"); raw != "" {
		if contribution, err = strconv.ParseFloat(raw, 64); err != nil {
			s.writeError(w, http.StatusBadRequest, "contribution must be a number")
			return
		}
	}
	frequency := 12
	if raw := q.Get("frequency"); raw != "" {
		if frequency, err = strconv.Atoi(raw); err != nil {
			s.writeError(w, http.StatusBadRequest, "frequency must be an integer")
			return
		}
	}
	res, err := calculator.CompoundInterest(v[0], v[1], int(v[2]), frequency, contribution)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if s.Comparer == nil {
		s.writeError(w, http.StatusNotFound, "compare is not configured")
		return
	}
	q := r.URL.Query()
	end := time.Now().UTC()
	start := end.AddDate(-1, 0, 0)
	var err error
	if raw := q.Get("start"); raw != "" {
		if start, err = time.Parse(model.DateLayout, raw); err != nil {
			s.writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
			return
		}
	}
	if raw := q.Get("end"); raw != "" {
		if end, err = time.Parse(model.DateLayout, raw); err != nil {
			s.writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
			return
		}
	}
	if !end.After(start) {
		s.writeError(w, http.StatusBadRequest, "end must be after start")
		return
	}
	symbols, err := s.symbols(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if len(symbols) < 2 {
		s.writeError(w, http.StatusBadRequest, "compare needs at least two symbols")
		return
	}
	res, err := s.Comparer.Compare(r.Context(), symbols, start, end)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}


func (s *Server) handleFundamentals(w http.ResponseWriter, r *http.Request) {
	if s.Fundamentals == nil {
		s.writeError(w, http.StatusNotFound, "fundamentals are not configured")
		return
	}
	symbols, err := s.symbols(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if len(symbols) == 0 {
		s.writeError(w, http.StatusBadRequest, "no symbols requested")
		return
	}
	if len(symbols) > maxFundamentals {
		s.writeError(w, http.StatusBadRequest, "at most 50 symbols per request")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"fundamentals": collector.CollectFundamentals(r.Context(), s.Fundamentals, symbols, s.Log),
	})
}
