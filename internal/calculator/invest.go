package calculator

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// CAGR returns the compound annual growth rate as a fraction: (end/start)^(1/years) - 1.
func CAGR(start, end, years float64) (float64, error) {
	if start <= 0 {
		return 0, errors.New("start value must be positive")
	}
	if years <= 0 {
		return 0, errors.New("years must be positive")
	}
	if end < 0 {
		return 0, errors.New("end value must not be negative")
	}
	return math.Pow(end/start, 1/years) - 1, nil
}

// CompoundResult is the outcome of a compound interest projection.
type CompoundResult struct {
	FinalValue       decimal.Decimal   `json:"final_value"`
	TotalContributed decimal.Decimal   `json:"total_contributed"`
	InterestEarned   decimal.Decimal   `json:"interest_earned"`
	YearEndBalances  []decimal.Decimal `json:"year_end_balances"`
}

// CompoundInterest projects principal growing at ratePct percent a year,
// compounded frequency times a year. monthlyContribution is added at every
// compounding step, scaled to the months the step covers.
func CompoundInterest(principal, ratePct float64, years, frequency int, monthlyContribution float64) (*CompoundResult, error) {
	if years < 0 {
		return nil, errors.New("years must not be negative")
	}
	if frequency <= 0 {
		return nil, errors.New("frequency must be positive")
	}
	if principal < 0 || monthlyContribution < 0 {
		return nil, errors.New("principal and contribution must not be negative")
	}

	freq := decimal.NewFromInt(int64(frequency))
	growth := decimal.NewFromInt(1).Add(decimal.NewFromFloat(ratePct).Div(decimal.NewFromInt(100).Mul(freq)))
	step := decimal.NewFromFloat(monthlyContribution).Mul(decimal.NewFromInt(12)).Div(freq)

	total := decimal.NewFromFloat(principal)
	contributed := total
	res := &CompoundResult{YearEndBalances: make([]decimal.Decimal, 0, years)}

	for i := 1; i <= years*frequency; i++ {
		total = total.Mul(growth).Add(step)
		contributed = contributed.Add(step)
		if i%frequency == 0 {
			res.YearEndBalances = append(res.YearEndBalances, total.Round(2))
		}
	}

	res.FinalValue = total.Round(2)
	res.TotalContributed = contributed.Round(2)
	res.InterestEarned = total.Sub(contributed).Round(2)
	return res, nil
}
