package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"MarketPulse/internal/calculator"
	"MarketPulse/internal/compare"
	"MarketPulse/internal/model"
	"MarketPulse/internal/recorder"
	"MarketPulse/internal/store"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	upStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	downStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#374151"))
)

func signed(v float64) string {
	s := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return upStyle.Render(s)
	case v < 0:
		return downStyle.Render(s)
	}
	return mutedStyle.Render(s)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderRanking(res model.PeriodResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %s → %s", res.Period.Name(), res.Period.StartDate(), res.Period.EndDate())))
	b.WriteString("\n")
	if len(res.Ranked) == 0 {
		b.WriteString(mutedStyle.Render("no data for the requested symbols"))
		return b.String()
	}
	t := newTable("#", "Symbol", "Change")
	for i, r := range res.Ranked {
		t.Row(fmt.Sprintf("%d", i+1), r.Symbol, signed(r.PercentChange))
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d cached, %d fetched", res.Cached, res.Fetched)))
	return b.String()
}

func renderMatrix(m *model.ChangeMatrix) string {
	headers := []string{"Symbol"}
	for _, p := range m.Periods {
		headers = append(headers, p.Name())
	}
	t := newTable(headers...)
	for _, sym := range m.Symbols {
		row := []string{sym}
		for i := range m.Periods {
			row = append(row, signed(m.Value(sym, i)))
		}
		t.Row(row...)
	}
	return titleStyle.Render("Percent change by period") + "\n" + t.String()
}

func renderPortfolio(s *model.PortfolioSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Portfolio"))
	b.WriteString("\n")
	t := newTable("ID", "Ticker", "Shares", "Cost", "Price", "Value", "Gain/Loss", "Change")
	for _, h := range s.Holdings {
		pct, _ := h.PercentChange.Float64()
		t.Row(shortID(h.Holding.ID), h.Holding.Ticker, h.Holding.Shares.String(),
			h.CostBasis.StringFixed(2), h.CurrentPrice.StringFixed(2),
			h.CurrentValue.StringFixed(2), h.GainLoss.StringFixed(2), signed(pct))
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	if len(s.Unpriced) > 0 {
		b.WriteString(downStyle.Render("no price: " + strings.Join(s.Unpriced, ", ")))
		b.WriteString("\n")
	}
	avg, _ := s.AvgPercentChange.Float64()
	b.WriteString(fmt.Sprintf("Cost %s  Value %s  Gain/Loss %s  Avg %s",
		s.TotalCost.StringFixed(2), s.TotalValue.StringFixed(2), s.TotalGainLoss.StringFixed(2), signed(avg)))
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderHoldings(holdings []model.Holding) string {
	t := newTable("ID", "Ticker", "Shares", "Price", "Purchased")
	for _, h := range holdings {
		t.Row(h.ID, h.Ticker, h.Shares.String(), h.PurchasePrice.StringFixed(2), h.PurchaseDate.Format(model.DateLayout))
	}
	return t.String()
}

func renderLists(names []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Saved lists"))
	b.WriteString("\n")
	if len(names) == 0 {
		b.WriteString(mutedStyle.Render("none"))
		b.WriteString("\n")
	}
	for _, n := range names {
		b.WriteString("  " + n + "\n")
	}
	presets := make([]string, 0, len(store.Presets))
	for n := range store.Presets {
		presets = append(presets, n)
	}
	sort.Strings(presets)
	b.WriteString(mutedStyle.Render("presets: " + strings.Join(presets, ", ")))
	return b.String()
}

func renderList(l *model.StockList) string {
	return titleStyle.Render(fmt.Sprintf("%s (%d)", l.Name, len(l.Tickers))) + "\n" + strings.Join(l.Tickers, " ")
}

func renderCompound(r *calculator.CompoundResult) string {
	t := newTable("Year", "Balance")
	for i, bal := range r.YearEndBalances {
		t.Row(fmt.Sprintf("%d", i+1), bal.StringFixed(2))
	}
	return fmt.Sprintf("%s\n%s\nContributed %s  Interest %s",
		titleStyle.Render("Final value "+r.FinalValue.StringFixed(2)), t.String(),
		r.TotalContributed.StringFixed(2), r.InterestEarned.StringFixed(2))
}

func renderCompare(r *compare.Result) string {
	var b strings.Builder
	if n := len(r.Dates); n > 0 {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Compare %s → %s (%d sessions)", r.Dates[0], r.Dates[n-1], n)))
		b.WriteString("\n")
	}

	t := newTable(append([]string{"Symbol", "Return"}, r.Symbols...)...)
	for _, a := range r.Symbols {
		row := []string{a, "-"}
		if cum := r.Cumulative[a]; len(cum) > 0 {
			row[1] = signed(cum[len(cum)-1] * 100)
		}
		for _, c := range r.Symbols {
			row = append(row, fmt.Sprintf("%.2f", r.Correlation[a][c]))
		}
		t.Row(row...)
	}
	b.WriteString(t.String())
	b.WriteString("\n")

	st := newTable("Symbol", "Change", "High", "Low", "Range", "Max DD", "RSI14", "SMA50")
	for _, sym := range r.Symbols {
		s := r.Stats[sym]
		sma := "-"
		if s.SMA50 > 0 {
			sma = fmt.Sprintf("%.2f", s.SMA50)
		}
		st.Row(sym, signed(s.PercentChange), fmt.Sprintf("%.2f", s.High), fmt.Sprintf("%.2f", s.Low),
			fmt.Sprintf("%.0f%%", s.RangePosition*100), signed(s.MaxDrawdown), fmt.Sprintf("%.1f", s.RSI14), sma)
	}
	b.WriteString(st.String())
	for sym, reason := range r.Skipped {
		b.WriteString("\n")
		b.WriteString(downStyle.Render(fmt.Sprintf("skipped %s: %s", sym, reason)))
	}
	return b.String()
}

func renderFundamentals(rows []model.Fundamentals) string {
	if len(rows) == 0 {
		return mutedStyle.Render("no fundamentals available")
	}
	figure := func(v float64, format string) string {
		if v == 0 {
			return "-"
		}
		return fmt.Sprintf(format, v)
	}
	t := newTable("Symbol", "Name", "Price", "P/E", "Fwd P/E", "EPS", "Fwd EPS", "P/B", "Div Yield", "52w Range", "Earnings")
	for _, f := range rows {
		earnings := "-"
		if !f.EarningsDate.IsZero() {
			earnings = f.EarningsDate.Format(model.DateLayout)
		}
		t.Row(f.Symbol, f.Name,
			figure(f.Price, "%.2f"),
			figure(f.TrailingPE, "%.1f"),
			figure(f.ForwardPE, "%.1f"),
			figure(f.TrailingEPS, "%.2f"),
			figure(f.ForwardEPS, "%.2f"),
			figure(f.PriceToBook, "%.1f"),
			figure(f.DividendYield*100, "%.2f%%"),
			fmt.Sprintf("%.2f - %.2f", f.FiftyTwoWeekLow, f.FiftyTwoWeekHigh),
			earnings)
	}
	return t.String()
}

func renderRuns(runs []recorder.RunEvent) string {
	if len(runs) == 0 {
		return mutedStyle.Render("no recorded runs")
	}
	t := newTable("Started", "Task", "Took", "Symbols", "Periods", "Cached", "Fetched", "Error")
	for _, r := range runs {
		errText := ""
		if r.Error != "" {
			errText = downStyle.Render(r.Error)
		}
		t.Row(r.Started.Local().Format("2006-01-02 15:04:05"), r.Task, r.Duration.Round(time.Millisecond).String(),
			fmt.Sprintf("%d", r.Symbols), fmt.Sprintf("%d", r.Periods),
			fmt.Sprintf("%d", r.Cached), fmt.Sprintf("%d", r.Fetched), errText)
	}
	return t.String()
}
