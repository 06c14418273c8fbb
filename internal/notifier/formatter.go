package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"MarketPulse/internal/model"
)

// FormatRanking formats one period's ranked changes into a Telegram message.
func FormatRanking(res model.PeriodResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s performance</b> | %s → %s\n\n",
		res.Period.Name(), res.Period.StartDate(), res.Period.EndDate()))

	if len(res.Ranked) == 0 {
		b.WriteString("No data for the requested symbols.\n")
		return b.String()
	}
	for i, r := range res.Ranked {
		arrow := "🔺"
		if r.PercentChange < 0 {
			arrow = "🔻"
		}
		b.WriteString(fmt.Sprintf("%2d. %s <code>%-6s</code> %+.2f%%\n", i+1, arrow, html.EscapeString(r.Symbol), r.PercentChange))
	}
	b.WriteString(fmt.Sprintf("\n<i>%d cached, %d fetched</i>\n", res.Cached, res.Fetched))
	return b.String()
}

// FormatMatrix formats the symbol x period table as a preformatted block.
func FormatMatrix(m *model.ChangeMatrix) string {
	var b strings.Builder
	b.WriteString("📈 <b>Percent change by period</b>\n<pre>")

	b.WriteString(fmt.Sprintf("%-8s", "Symbol"))
	for _, p := range m.Periods {
		b.WriteString(fmt.Sprintf(" %9s", p.Name()))
	}
	b.WriteString("\n")

	for _, sym := range m.Symbols {
		b.WriteString(fmt.Sprintf("%-8s", html.EscapeString(sym)))
		for i := range m.Periods {
			b.WriteString(fmt.Sprintf(" %+8.2f%%", m.Value(sym, i)))
		}
		b.WriteString("\n")
	}
	b.WriteString("</pre>")
	return b.String()
}

// FormatPortfolio formats a portfolio valuation for display.
func FormatPortfolio(s *model.PortfolioSummary) string {
	var b strings.Builder
	b.WriteString("💼 <b>Portfolio</b>\n\n")
	for _, h := range s.Holdings {
		b.WriteString(fmt.Sprintf("%s: %s @ %s → %s (%s%%)\n",
			html.EscapeString(h.Holding.Ticker), h.Holding.Shares.String(),
			h.CurrentPrice.StringFixed(2), h.GainLoss.StringFixed(2), h.PercentChange.StringFixed(2)))
	}
	if len(s.Unpriced) > 0 {
		b.WriteString(fmt.Sprintf("⚠️ no price: %s\n", strings.Join(s.Unpriced, ", ")))
	}
	b.WriteString(fmt.Sprintf("\nCost: %s | Value: %s\n", s.TotalCost.StringFixed(2), s.TotalValue.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Gain/Loss: %s | Avg change: %s%%\n", s.TotalGainLoss.StringFixed(2), s.AvgPercentChange.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Valued at: %s\n", s.ValuedAt.Format("2006-01-02 15:04")))
	return b.String()
}

// FormatLists formats saved stock list names.
func FormatLists(names []string) string {
	if len(names) == 0 {
		return "📂 No saved lists."
	}
	return "📂 <b>Saved lists</b>\n" + html.EscapeString(strings.Join(names, "\n"))
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return strings.Join([]string{
		"🤖 <b>Commands</b>",
		"/changes Q2 2023 AAPL MSFT - one period ranking",
		"/quarters 4 [list] - trailing quarters matrix",
		"/years 3 [list] - trailing years matrix",
		"/lists - saved stock lists",
		"/portfolio - portfolio valuation",
		"/help - this message",
		"",
		fmt.Sprintf("<i>%s</i>", time.Now().Format("2006-01-02 15:04")),
	}, "\n")
}
