package period

import (
	"errors"
	"testing"
	"time"
)

func TestResolve_Quarters(t *testing.T) {
	tests := []struct {
		label      string
		year       int
		start, end string
	}{
		{"Q1", 2024, "2024-01-01", "2024-03-31"},
		{"Q2", 2023, "2023-04-01", "2023-06-30"},
		{"Q3", 2023, "2023-07-01", "2023-09-30"},
		{"Q4", 2023, "2023-10-01", "2023-12-31"},
		{"q2", 2020, "2020-04-01", "2020-06-30"},
		{"FY", 2022, "2022-01-01", "2022-12-31"},
		{"2021", 2021, "2021-01-01", "2021-12-31"},
	}

	for _, tt := range tests {
		p, err := Resolve(tt.label, tt.year)
		if err != nil {
			t.Fatalf("%s %d: unexpected error: %v", tt.label, tt.year, err)
		}
		if p.StartDate() != tt.start || p.EndDate() != tt.end {
			t.Errorf("%s %d: expected (%s, %s), got (%s, %s)",
				tt.label, tt.year, tt.start, tt.end, p.StartDate(), p.EndDate())
		}
	}
}

func TestResolve_UnknownLabel(t *testing.T) {
	for _, label := range []string{"Q5", "Q0", "H1", "", "2020"} {
		if _, err := Resolve(label, 2023); !errors.Is(err, ErrUnknownLabel) {
			t.Errorf("label %q: expected ErrUnknownLabel, got %v", label, err)
		}
	}
}

func TestResolveString_BadYear(t *testing.T) {
	if _, err := ResolveString("Q1", "twenty"); err == nil {
		t.Error("expected error for non-numeric year")
	}
}

func TestLastNQuarters_NoGaps(t *testing.T) {
	now := time.Date(2024, time.February, 15, 12, 0, 0, 0, time.Local)

	for n := 1; n <= 12; n++ {
		got := LastNQuarters(now, n)
		if len(got) != n {
			t.Fatalf("n=%d: expected %d periods, got %d", n, n, len(got))
		}
		last := got[len(got)-1]
		if last.Label != "Q1" || last.Year != 2024 {
			t.Errorf("n=%d: expected last period Q1 2024, got %s", n, last.Name())
		}
		for i := 1; i < len(got); i++ {
			want := got[i-1].End.AddDate(0, 0, 1)
			if !got[i].Start.Equal(want) {
				t.Errorf("n=%d: period %d starts %s, expected %s",
					n, i, got[i].StartDate(), want.Format("2006-01-02"))
			}
		}
	}
}

func TestLastNQuarters_WrapsYear(t *testing.T) {
	now := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.Local)
	got := LastNQuarters(now, 4)

	want := []string{"Q3 2023", "Q4 2023", "Q1 2024", "Q2 2024"}
	for i, p := range got {
		if p.Name() != want[i] {
			t.Errorf("index %d: expected %s, got %s", i, want[i], p.Name())
		}
	}
}

func TestLastNQuarters_NonPositive(t *testing.T) {
	if got := LastNQuarters(time.Now(), 0); len(got) != 0 {
		t.Errorf("expected no periods, got %d", len(got))
	}
}

func TestLastNYears(t *testing.T) {
	now := time.Date(2024, time.November, 30, 0, 0, 0, 0, time.Local)
	got := LastNYears(now, 3)

	want := []int{2022, 2023, 2024}
	if len(got) != len(want) {
		t.Fatalf("expected %d years, got %d", len(want), len(got))
	}
	for i, p := range got {
		if p.Year != want[i] || p.Start.Month() != time.January || p.End.Month() != time.December {
			t.Errorf("index %d: expected %d, got %s", i, want[i], p.Name())
		}
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList("Q1-2024, Q2-2024,2023")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Q1 2024", "Q2 2024", "2023"}
	if len(got) != len(want) {
		t.Fatalf("expected %d periods, got %d", len(want), len(got))
	}
	for i, p := range got {
		if p.Name() != want[i] {
			t.Errorf("index %d: expected %s, got %s", i, want[i], p.Name())
		}
	}
}

func TestResolver_FixedClock(t *testing.T) {
	r := &Resolver{Now: func() time.Time { return time.Date(2023, time.December, 31, 0, 0, 0, 0, time.Local) }}
	qs := r.LastQuarters(2)
	if qs[0].Name() != "Q3 2023" || qs[1].Name() != "Q4 2023" {
		t.Errorf("expected Q3 2023, Q4 2023; got %s, %s", qs[0].Name(), qs[1].Name())
	}
}
