// Package period maps quarter and year labels onto calendar date windows.
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"MarketPulse/internal/model"
)

// ErrUnknownLabel is returned for labels that are neither a quarter nor a full year.
var ErrUnknownLabel = errors.New("unknown period label")

// quarterStartMonth maps a quarter number to its first month.
var quarterStartMonth = map[int]time.Month{
	1: time.January,
	2: time.April,
	3: time.July,
	4: time.October,
}

// Resolve returns the inclusive bounds of a quarter ("Q1".."Q4") or of the
// whole year ("FY", "YEAR", or the year itself) in the given year.
func Resolve(label string, year int) (model.Period, error) {
	l := strings.ToUpper(strings.TrimSpace(label))
	switch {
	case l == model.FullYear || l == "YEAR" || l == strconv.Itoa(year):
		return Year(year), nil
	case len(l) == 2 && l[0] == 'Q':
		q := int(l[1] - '0')
		if _, ok := quarterStartMonth[q]; ok {
			return Quarter(year, q), nil
		}
	}
	return model.Period{}, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
}

// ResolveString parses the year before resolving.
func ResolveString(label, year string) (model.Period, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return model.Period{}, fmt.Errorf("parse year %q: %w", year, err)
	}
	return Resolve(label, y)
}

// Quarter builds the period for quarter q (1-4) of year.
func Quarter(year, q int) model.Period {
	start := time.Date(year, quarterStartMonth[q], 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, -1)
	return model.Period{Label: fmt.Sprintf("Q%d", q), Year: year, Start: start, End: end}
}

// Year builds the calendar-year period.
func Year(year int) model.Period {
	return model.Period{
		Label: model.FullYear,
		Year:  year,
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// QuarterOf returns the calendar quarter containing t.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// LastNQuarters returns the n quarters ending with the one containing now,
// oldest first. Each step moves back exactly one quarter.
func LastNQuarters(now time.Time, n int) []model.Period {
	if n <= 0 {
		return nil
	}
	out := make([]model.Period, n)
	year, q := now.Year(), QuarterOf(now)
	for i := n - 1; i >= 0; i-- {
		out[i] = Quarter(year, q)
		q--
		if q == 0 {
			q = 4
			year--
		}
	}
	return out
}

// LastNYears returns the n calendar years ending with the current one, oldest first.
func LastNYears(now time.Time, n int) []model.Period {
	if n <= 0 {
		return nil
	}
	out := make([]model.Period, n)
	for i := 0; i < n; i++ {
		out[i] = Year(now.Year() - (n - 1 - i))
	}
	return out
}

// ParseList parses "Q1-2024,Q2-2024,2023" style period lists.
func ParseList(s string) ([]model.Period, error) {
	var out []model.Period
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label, year, found := strings.Cut(part, "-")
		if !found {
			year, label = part, model.FullYear
		}
		p, err := ResolveString(label, year)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Resolver enumerates trailing periods relative to its clock.
type Resolver struct {
	Now func() time.Time
}

// NewResolver returns a resolver on wall-clock local time.
func NewResolver() *Resolver {
	return &Resolver{Now: time.Now}
}

func (r *Resolver) now() time.Time {
	if r == nil || r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// LastQuarters is LastNQuarters relative to the resolver clock.
func (r *Resolver) LastQuarters(n int) []model.Period { return LastNQuarters(r.now(), n) }

// LastYears is LastNYears relative to the resolver clock.
func (r *Resolver) LastYears(n int) []model.Period { return LastNYears(r.now(), n) }
