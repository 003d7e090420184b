package extract

import (
	"regexp"
	"strings"
)

var (
	booleanWord   = regexp.MustCompile(`(?i)\b(?:(not|no)\s+)?(yes|no|true|false|dependent|independent|related|unrelated)\b`)
	verdictMarker = regexp.MustCompile(`(?i)\b(?:answer|verdict|conclusion)\s*[:=]`)
	chainMarker   = regexp.MustCompile(`(?i)\b(?:chain|path|via|through)\b\s*[:=]?`)
	chainSplit    = regexp.MustCompile(`\s*(?:->|=>|→|⇒|,|;|\bthen\b|\bto\b)\s*`)
)

// findBooleanAnswer locates a yes/no verdict in free text. A verdict after
// an answer marker wins, then a verdict leading the text, then a unanimous
// verdict anywhere. Conflicting verdicts without a marker are ambiguous.
func findBooleanAnswer(text string) (bool, bool, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false, false, false
	}
	if markers := verdictMarker.FindAllStringIndex(trimmed, -1); len(markers) > 0 {
		segment := trimmed[markers[len(markers)-1][1]:]
		if match := booleanWord.FindStringSubmatch(segment); match != nil {
			return booleanMatchValue(match), true, false
		}
	}
	matches := booleanWord.FindAllStringSubmatchIndex(trimmed, -1)
	if len(matches) == 0 {
		return false, false, false
	}
	if matches[0][0] <= 3 {
		match := booleanWord.FindStringSubmatch(trimmed[matches[0][0]:])
		return booleanMatchValue(match), true, false
	}
	value, unanimous := booleanMatchesAgree(trimmed, matches)
	if unanimous {
		return value, true, false
	}
	return false, false, true
}

// parseBooleanPhrase interprets one short verdict string, such as a JSON
// string field. The phrase must be unambiguous.
func parseBooleanPhrase(text string) (bool, bool) {
	trimmed := strings.TrimSpace(text)
	matches := booleanWord.FindAllStringSubmatchIndex(trimmed, -1)
	if len(matches) == 0 {
		return false, false
	}
	return booleanMatchesAgree(trimmed, matches)
}

func booleanMatchesAgree(text string, matches [][]int) (bool, bool) {
	value := false
	for i, match := range matches {
		current := booleanIndexValue(text, match)
		if i == 0 {
			value = current
			continue
		}
		if current != value {
			return false, false
		}
	}
	return value, true
}

func booleanMatchValue(match []string) bool {
	value := booleanTokenValue(match[2])
	if match[1] != "" {
		return !value
	}
	return value
}

func booleanIndexValue(text string, match []int) bool {
	negated := match[2] >= 0
	token := text[match[4]:match[5]]
	value := booleanTokenValue(token)
	if negated {
		return !value
	}
	return value
}

func booleanTokenValue(token string) bool {
	switch strings.ToLower(token) {
	case "yes", "true", "dependent", "related":
		return true
	}
	return false
}

// findChainClaims locates an ordered dependence chain in free text, either
// inline after the last chain marker or as a bullet list below it.
func findChainClaims(text string) ([]claim, bool) {
	markers := chainMarker.FindAllStringIndex(text, -1)
	if len(markers) == 0 {
		return nil, false
	}
	segment := text[markers[len(markers)-1][1]:]
	line, rest, _ := strings.Cut(segment, "\n")
	if claims, ok := parseChainItems(line); ok {
		return claims, true
	}
	restLines := strings.Split(rest, "\n")
	for len(restLines) > 0 && strings.TrimSpace(restLines[0]) == "" {
		restLines = restLines[1:]
	}
	if len(restLines) > 0 && bulletLine.MatchString(restLines[0]) {
		if claims, ok := parseBulletItems(restLines, false); ok {
			return claims, true
		}
	}
	return nil, false
}

func parseChainItems(line string) ([]claim, bool) {
	items := chainSplit.Split(strings.TrimSpace(line), -1)
	claims := []claim{}
	for _, item := range items {
		item = strings.TrimSpace(strings.Trim(item, ".,;"))
		if item == "" {
			continue
		}
		parsed, ok := parseItemClaim(item)
		if !ok {
			break
		}
		claims = append(claims, parsed)
	}
	if len(claims) == 0 {
		return nil, false
	}
	return claims, true
}
