package extract

import (
	"regexp"
	"strconv"
	"strings"

	"depeval/internal/corpus"
)

// claim is one lexically recognized program point reference, before
// resolution against scan metadata.
type claim struct {
	text   string
	line   int
	symbol string
}

var (
	claimPattern = regexp.MustCompile(`^(?i:line\s*|l)(\d+)(?:[:.]([A-Za-z_][A-Za-z0-9_]*)|\s*\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*\))?$|^(\d+)(?:[:.]([A-Za-z_][A-Za-z0-9_]*)|\s*\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*\))?$`)
	claimPrefix  = regexp.MustCompile(`^((?i:line\s*|l)?\d+(?:[:.][A-Za-z_][A-Za-z0-9_]*)?)(?:[\s,.;)\]!?-]|$)`)
)

// parseClaim recognizes one point reference: a bare line number, an L-form
// such as L8 or L8:x, or "line 8". The symbol may follow a colon, a dot, or
// sit in parentheses.
func parseClaim(text string) (claim, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return claim{}, false
	}
	match := claimPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return claim{}, false
	}
	digits := match[1]
	symbol := firstNonEmpty(match[2], match[3])
	if digits == "" {
		digits = match[4]
		symbol = firstNonEmpty(match[5], match[6])
	}
	line, err := strconv.Atoi(digits)
	if err != nil || line < 1 {
		return claim{}, false
	}
	return claim{text: trimmed, line: line, symbol: symbol}, true
}

// parseClaimPrefix recognizes a point reference at the start of an item,
// tolerating trailing commentary after a separator.
func parseClaimPrefix(text string) (claim, bool) {
	trimmed := strings.TrimSpace(text)
	match := claimPrefix.FindStringSubmatch(trimmed)
	if match == nil {
		return claim{}, false
	}
	return parseClaim(match[1])
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// resolveClaims locates claims inside the scanned program. Claims naming
// lines the analyzer never recorded stay unresolved.
func resolveClaims(record corpus.ScanRecord, claims []claim) ([]corpus.Point, []string) {
	points := []corpus.Point{}
	unresolved := []string{}
	for _, c := range claims {
		if !record.HasLine(c.line) {
			unresolved = append(unresolved, c.text)
			continue
		}
		points = append(points, corpus.Point{File: record.File, Line: c.line, Symbol: c.symbol})
	}
	return corpus.DedupePoints(points), unresolved
}

// resolveChainClaims is resolveClaims without reordering, since chains are
// order sensitive. Duplicate consecutive points collapse.
func resolveChainClaims(record corpus.ScanRecord, claims []claim) ([]corpus.Point, []string) {
	points := []corpus.Point{}
	unresolved := []string{}
	for _, c := range claims {
		if !record.HasLine(c.line) {
			unresolved = append(unresolved, c.text)
			continue
		}
		point := corpus.Point{File: record.File, Line: c.line, Symbol: c.symbol}
		if len(points) > 0 && points[len(points)-1].Key() == point.Key() {
			continue
		}
		points = append(points, point)
	}
	return points, unresolved
}
