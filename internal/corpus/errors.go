package corpus

import (
	"fmt"
	"strings"
)

// Issue captures one problem found while validating a corpus file.
type Issue struct {
	Field   string
	Message string
}

// FormatError reports structural problems in an annotation or scan file.
type FormatError struct {
	Path   string
	Issues []Issue
}

// Error returns a readable message listing every issue.
func (err *FormatError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("corpus file %s is invalid: %s", err.Path, strings.Join(parts, "; "))
}

// ScanMismatchError reports disagreement between scan metadata and the
// annotated program set of one language.
type ScanMismatchError struct {
	Language  string
	Missing   []string
	Unscanned []string
	Unlabeled []string
}

// Error returns a readable message naming the mismatched programs.
func (err *ScanMismatchError) Error() string {
	if err == nil {
		return ""
	}
	parts := []string{}
	if len(err.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("scan entries without program files: %s", strings.Join(err.Missing, ", ")))
	}
	if len(err.Unscanned) > 0 {
		parts = append(parts, fmt.Sprintf("annotated programs without scan entries: %s", strings.Join(err.Unscanned, ", ")))
	}
	if len(err.Unlabeled) > 0 {
		parts = append(parts, fmt.Sprintf("scan entries matching no annotated program: %s", strings.Join(err.Unlabeled, ", ")))
	}
	return fmt.Sprintf("scan metadata mismatch for language %s: %s", err.Language, strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

func (collector *issueCollector) result(path string) error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &FormatError{Path: path, Issues: collector.issues}
}
