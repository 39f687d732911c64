package productgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	assert := assert.New(t)

	products := []ProductRecord{
		{Price: 20, ProfitMargin: 40},
		{Price: 120, ProfitMargin: 60},
	}

	summary, err := Summarize(products)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal(2, summary.Count)
	assert.InDelta(70.0, summary.AveragePrice, 1e-9)
	assert.InDelta(50.0, summary.AverageMargin, 1e-9)
	assert.Equal(1, summary.HighMarginCount, "60 is not above the threshold")
	assert.Equal(map[PriceBand]int{
		PriceBandBudget: 1,
		PriceBandMid:    0,
		PriceBandHigh:   1,
	}, summary.PriceRanges)
}

func TestSummarizeOutOfPolicy(t *testing.T) {
	assert := assert.New(t)

	// budget at 70% and high-end at 20% both violate their bands
	products := []ProductRecord{
		{Price: 15, ProfitMargin: 70},
		{Price: 200, ProfitMargin: 20},
		{Price: 40, ProfitMargin: 50},
		{Price: 100, ProfitMargin: 61},
	}

	summary, err := Summarize(products)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.InDelta(88.75, summary.AveragePrice, 1e-9)
	assert.InDelta(50.25, summary.AverageMargin, 1e-9)
	assert.Equal(2, summary.HighMarginCount)
	assert.Equal(1, summary.PriceRanges[PriceBandBudget])
	assert.Equal(2, summary.PriceRanges[PriceBandMid])
	assert.Equal(1, summary.PriceRanges[PriceBandHigh])
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}
