package productgen

import (
	"fmt"
	"io"
)

// PreviewCount is how many products a report lists by name.
const PreviewCount = 5

// WriteReport prints the outcome of a generation run. A failed run shows
// the error and the start of the raw response.
func WriteReport(w io.Writer, result *GenerationResult) error {
	if result.Failed() {
		_, err := fmt.Fprintf(w, "✗ Error generating products: %s\n\nResponse preview: %s\n",
			result.Error, Preview(result.Raw, 500))
		return err
	}

	fmt.Fprintf(w, "✓ Successfully generated %d products\n\n", len(result.Products))

	if len(result.Products) == 0 {
		return nil
	}

	fmt.Fprintln(w, "Sample products:")
	for i, p := range result.Products {
		if i == PreviewCount {
			break
		}

		fmt.Fprintf(w, "  %d. %s - $%.2f (%.1f%% margin)\n", i+1, p.Name, p.Price, p.ProfitMargin)
	}

	if n := len(result.Products); n > PreviewCount {
		fmt.Fprintf(w, "  ... and %d more products\n", n-PreviewCount)
	}

	return nil
}

// WriteSummary prints the statistics block of a batch.
func WriteSummary(w io.Writer, summary Summary) error {
	fmt.Fprintln(w, "\nStatistics:")
	fmt.Fprintf(w, "  Average Price: $%.2f\n", summary.AveragePrice)
	fmt.Fprintf(w, "  Average Profit Margin: %.2f%%\n", summary.AverageMargin)
	fmt.Fprintf(w, "  High Margin Products (>%d%%): %d\n", HighMarginThreshold, summary.HighMarginCount)

	fmt.Fprintln(w, "\n  Price Distribution:")
	for _, band := range []PriceBand{PriceBandBudget, PriceBandMid, PriceBandHigh} {
		if _, err := fmt.Fprintf(w, "    %s: %d products\n", band.Label(), summary.PriceRanges[band]); err != nil {
			return err
		}
	}

	return nil
}
