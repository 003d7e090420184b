package live

import (
	"fmt"
	"strconv"
	"time"

	"depeval/internal/eval"
)

const lastResultWidth = 80

func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// fmtPercent renders a rate cell. Rates that cannot be computed render as
// a dash, never as zero.
func fmtPercent(rate *float64) string {
	if rate == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *rate*100)
}

func pad2(value int) string {
	if value < 10 {
		return "0" + strconv.Itoa(value)
	}
	return strconv.Itoa(value)
}

func formatElapsed(since time.Time, now time.Time) string {
	elapsed := now.Sub(since)
	if elapsed < 0 {
		elapsed = 0
	}
	total := int(elapsed.Seconds())
	minutes := total / 60
	seconds := total % 60
	return pad2(minutes) + ":" + pad2(seconds)
}

// describeResult builds the one-line verdict shown in the footer.
func describeResult(result eval.Result) string {
	verdict := "scored"
	switch {
	case result.ExtractionFailed:
		verdict = "failed"
		if result.FailureReason != "" {
			verdict = "failed (" + result.FailureReason + ")"
		}
	case result.Source != nil:
		verdict = fmt.Sprintf("f1 %.2f", result.Source.F1)
	case result.Trace != nil:
		verdict = "wrong"
		if result.Trace.Correct {
			verdict = "correct"
		}
	}
	return truncate(result.InstanceID+" "+verdict, lastResultWidth)
}

func truncate(text string, width int) string {
	if len(text) <= width || width <= 3 {
		return text
	}
	return text[:width-3] + "..."
}
