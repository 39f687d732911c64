package productgen

// HighMarginThreshold is the profit margin, in percent, above which a
// product counts as high margin.
const HighMarginThreshold = 60

type Summary struct {
	Count           int               `json:"count"`
	AveragePrice    float64           `json:"average_price"`
	AverageMargin   float64           `json:"average_margin"`
	HighMarginCount int               `json:"high_margin_count"`
	PriceRanges     map[PriceBand]int `json:"price_ranges"`
}

// Summarize computes batch statistics. Policy bands only bucket prices
// here; out-of-band margins are counted like any other.
func Summarize(products []ProductRecord) (Summary, error) {
	if len(products) == 0 {
		return Summary{}, ErrNoRecords
	}

	summary := Summary{
		Count: len(products),
		PriceRanges: map[PriceBand]int{
			PriceBandBudget: 0,
			PriceBandMid:    0,
			PriceBandHigh:   0,
		},
	}

	var totalPrice, totalMargin float64
	for _, p := range products {
		totalPrice += p.Price
		totalMargin += p.ProfitMargin

		if p.ProfitMargin > HighMarginThreshold {
			summary.HighMarginCount++
		}

		summary.PriceRanges[PriceBandOf(p.Price)]++
	}

	n := float64(len(products))
	summary.AveragePrice = totalPrice / n
	summary.AverageMargin = totalMargin / n

	return summary, nil
}
