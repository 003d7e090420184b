package report

import (
	"fmt"
	"strconv"
)

// formatPercent renders a rate for terminal and HTML output. Rates that
// cannot be computed render as a dash, never as zero.
func formatPercent(rate *float64) string {
	if rate == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *rate*100)
}

// formatCSVRate renders a rate as a raw float for the CSV artifact, empty
// when the rate cannot be computed.
func formatCSVRate(rate *float64) string {
	if rate == nil {
		return ""
	}
	return strconv.FormatFloat(*rate, 'f', 6, 64)
}

// orAll substitutes the rollup placeholder for empty group fields.
func orAll(value string) string {
	if value == "" {
		return "all"
	}
	return value
}
