package core

// CategoryStatus classifies how much of a category's budget is consumed.
type CategoryStatus string

const (
	StatusOK      CategoryStatus = "ok"      // spent ratio below 80%
	StatusWarning CategoryStatus = "warning" // ratio in [80, 100)
	StatusDanger  CategoryStatus = "danger"  // ratio at or above 100%
)

type (
	// CategoryReport is the derived budget picture for one category.
	CategoryReport struct {
		Key        string         `json:"key"`
		Label      string         `json:"label"`
		Percent    int            `json:"percent"`
		Budget     float64        `json:"budget"`
		Spent      float64        `json:"spent"`
		Balance    float64        `json:"balance"`
		SpentRatio float64        `json:"spentRatio"`
		Status     CategoryStatus `json:"status"`
	}

	// MonthReport aggregates one month of expenses against an income and
	// category allocation.
	MonthReport struct {
		Month      string           `json:"month"`
		Income     float64          `json:"income"`
		TotalSpent float64          `json:"totalSpent"`
		Categories []CategoryReport `json:"categories"`
	}
)

// SpentByCategory sums expense values grouped by category key.
func SpentByCategory(expenses []Expense) map[string]float64 {
	spent := make(map[string]float64, len(expenses))
	for _, e := range expenses {
		spent[e.Category] += e.Value
	}
	return spent
}

// BuildMonthReport derives per-category budget, spend, balance and status
// for the given month (YYYY-MM; empty means all expenses). It is a pure
// function: identical inputs always yield identical output.
func BuildMonthReport(income float64, cats []Category, expenses []Expense, month string) MonthReport {
	scoped := expenses
	if month != "" {
		scoped = make([]Expense, 0, len(expenses))
		for _, e := range expenses {
			if e.Month() == month {
				scoped = append(scoped, e)
			}
		}
	}
	spent := SpentByCategory(scoped)

	report := MonthReport{
		Month:      month,
		Income:     income,
		Categories: make([]CategoryReport, 0, len(cats)),
	}
	for _, c := range cats {
		budget := income * float64(c.Percent) / 100
		s := spent[c.Key]
		ratio := 0.0
		if budget > 0 {
			ratio = s / budget * 100
			if ratio > 100 {
				ratio = 100
			}
		}
		report.TotalSpent += s
		report.Categories = append(report.Categories, CategoryReport{
			Key:        c.Key,
			Label:      c.Label,
			Percent:    c.Percent,
			Budget:     budget,
			Spent:      s,
			Balance:    budget - s,
			SpentRatio: ratio,
			Status:     statusFor(ratio),
		})
	}
	return report
}

func statusFor(ratio float64) CategoryStatus {
	switch {
	case ratio < 80:
		return StatusOK
	case ratio < 100:
		return StatusWarning
	default:
		return StatusDanger
	}
}
