package model

import (
	"fmt"
	"time"
)

// FullYear is the label of a calendar-year period.
const FullYear = "FY"

// Period is a named calendar interval with inclusive bounds.
type Period struct {
	Label string    `json:"label"`
	Year  int       `json:"year"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Name renders the period as "Q2 2023" or "2023".
func (p Period) Name() string {
	if p.Label == FullYear {
		return fmt.Sprintf("%d", p.Year)
	}
	return fmt.Sprintf("%s %d", p.Label, p.Year)
}

// StartDate returns the ISO start date.
func (p Period) StartDate() string { return p.Start.Format(DateLayout) }

// EndDate returns the ISO end date.
func (p Period) EndDate() string { return p.End.Format(DateLayout) }
