package extract

import (
	"regexp"
	"strings"
)

var (
	listMarker = regexp.MustCompile(`(?i)(?:\b(?:final answer|answer|dependency sources|dependence sources|source lines|sources|lines)\s*[:=]|\bdepends\s+(?:on|upon)\b:?)`)
	bulletLine = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.*)$`)
	emptyAfter = regexp.MustCompile(`(?i)^(?:none|nothing|empty|no\b)`)
	bareEmpty  = regexp.MustCompile(`(?i)^(?:none|nothing|empty(?:\s+set)?|no\s+(?:sources|dependencies|dependency\s+sources|data\s+dependencies|control\s+dependencies))[.!]?$`)
	itemSplit  = regexp.MustCompile(`\s*(?:,|;|\band\b|&)\s*`)
)

// findListAnswer locates an enumerated source mode answer in free text. It
// looks after the last recognizable marker first, then tries the whole text
// as a bare list or a bare empty-set phrasing. The empty return reports a
// valid "no sources" answer.
func findListAnswer(text string) ([]claim, bool, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false, false
	}
	if markers := listMarker.FindAllStringIndex(trimmed, -1); len(markers) > 0 {
		segment := strings.TrimSpace(trimmed[markers[len(markers)-1][1]:])
		if emptyAfter.MatchString(segment) {
			return nil, true, true
		}
		if claims, ok := parseListSegment(segment, false); ok {
			return claims, false, true
		}
	}
	if bareEmpty.MatchString(trimmed) {
		return nil, true, true
	}
	if claims, ok := parseListSegment(trimmed, true); ok {
		return claims, false, true
	}
	return nil, false, false
}

// parseListSegment parses one list of point references. In strict form the
// whole segment must be list items; in loose form items parse until the
// first lexical failure, and a leading commentary line may precede bullets.
func parseListSegment(segment string, strict bool) ([]claim, bool) {
	trimmed := strings.TrimSpace(segment)
	if trimmed == "" {
		return nil, false
	}
	lines := strings.Split(trimmed, "\n")
	if bulletLine.MatchString(lines[0]) {
		return parseBulletItems(lines, strict)
	}
	if claims, ok := parseInlineItems(lines[0], strict && len(lines) == 1); ok && (!strict || len(lines) == 1) {
		return claims, true
	}
	if strict {
		return nil, false
	}
	for i := 1; i < len(lines); i++ {
		if bulletLine.MatchString(lines[i]) {
			return parseBulletItems(lines[i:], false)
		}
	}
	return nil, false
}

func parseBulletItems(lines []string, strict bool) ([]claim, bool) {
	claims := []claim{}
	for _, line := range lines {
		match := bulletLine.FindStringSubmatch(line)
		if match == nil {
			if strict && strings.TrimSpace(line) != "" {
				return nil, false
			}
			break
		}
		parsed, ok := parseItemClaim(match[1])
		if !ok {
			if strict {
				return nil, false
			}
			break
		}
		claims = append(claims, parsed)
	}
	if len(claims) == 0 {
		return nil, false
	}
	return claims, true
}

func parseInlineItems(line string, strict bool) ([]claim, bool) {
	items := itemSplit.Split(strings.TrimSpace(line), -1)
	claims := []claim{}
	for _, item := range items {
		item = strings.TrimSpace(strings.Trim(item, ".,;"))
		if item == "" {
			continue
		}
		parsed, ok := parseItemClaim(item)
		if !ok {
			if strict {
				return nil, false
			}
			break
		}
		claims = append(claims, parsed)
	}
	if len(claims) == 0 {
		return nil, false
	}
	return claims, true
}

// parseItemClaim parses one list item, tolerating trailing commentary after
// the point reference.
func parseItemClaim(item string) (claim, bool) {
	trimmed := strings.TrimSpace(strings.TrimRight(item, ".,;:"))
	if parsed, ok := parseClaim(trimmed); ok {
		return parsed, true
	}
	return parseClaimPrefix(trimmed)
}
