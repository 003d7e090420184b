package report

import (
	"context"
	"strings"

	"depeval/internal/runner"
)

// RenderHTML renders the report page into a string.
func RenderHTML(summary runner.Summary) (string, error) {
	var builder strings.Builder
	if err := ReportPage(summary).Render(context.Background(), &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}
