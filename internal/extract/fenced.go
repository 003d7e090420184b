package extract

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"depeval/internal/corpus"
)

var fencedBlock = regexp.MustCompile("(?s)```[\\w-]*[ \\t]*\\r?\\n?(.*?)```")

// fencedBlocks returns the contents of matched code fences in order.
func fencedBlocks(raw string) []string {
	matches := fencedBlock.FindAllStringSubmatch(raw, -1)
	blocks := make([]string, 0, len(matches))
	for _, match := range matches {
		blocks = append(blocks, match[1])
	}
	return blocks
}

// stripFencedBlocks blanks matched code fences so text parsing never reads
// tokens inside rejected JSON.
func stripFencedBlocks(raw string) string {
	return fencedBlock.ReplaceAllString(raw, " ")
}

// sourceFromJSON maps one fenced block onto a source mode answer. The block
// must decode as JSON and satisfy the answer schema.
func sourceFromJSON(block string, record corpus.ScanRecord) ([]corpus.Point, []string, bool) {
	value, ok := decodeAnswerJSON(block)
	if !ok || !validateAnswerShape(value, false) {
		return nil, nil, false
	}
	items, ok := value.ArrayValue()
	if !ok {
		object, _ := value.ObjectValue()
		if listed, exists := object["sources"]; exists {
			items, _ = listed.ArrayValue()
		} else if listed, exists := object["answer"]; exists {
			items, _ = listed.ArrayValue()
		}
	}
	claims := make([]claim, 0, len(items))
	unresolved := []string{}
	for _, item := range items {
		parsed, ok := claimFromJSON(item)
		if !ok {
			unresolved = append(unresolved, renderJSONItem(item))
			continue
		}
		claims = append(claims, parsed)
	}
	points, moreUnresolved := resolveClaims(record, claims)
	return points, append(unresolved, moreUnresolved...), true
}

// traceFromJSON maps one fenced block onto a trace mode answer.
func traceFromJSON(block string, record corpus.ScanRecord) (bool, []corpus.Point, []string, bool) {
	value, ok := decodeAnswerJSON(block)
	if !ok || !validateAnswerShape(value, true) {
		return false, nil, nil, false
	}
	object, _ := value.ObjectValue()
	verdict, found := JSONValue{}, false
	for _, key := range []string{"dependent", "related", "answer"} {
		if candidate, exists := object[key]; exists {
			verdict, found = candidate, true
			break
		}
	}
	if !found {
		return false, nil, nil, false
	}
	related, ok := verdictValue(verdict)
	if !ok {
		return false, nil, nil, false
	}
	chain := []corpus.Point{}
	chainUnresolved := []string{}
	if listed, exists := object["chain"]; exists {
		items, _ := listed.ArrayValue()
		claims := make([]claim, 0, len(items))
		for _, item := range items {
			parsed, ok := claimFromJSON(item)
			if !ok {
				chainUnresolved = append(chainUnresolved, renderJSONItem(item))
				continue
			}
			claims = append(claims, parsed)
		}
		var more []string
		chain, more = resolveChainClaims(record, claims)
		chainUnresolved = append(chainUnresolved, more...)
	}
	return related, chain, chainUnresolved, true
}

func decodeAnswerJSON(block string) (JSONValue, bool) {
	trimmed := strings.TrimSpace(block)
	if trimmed == "" {
		return JSONValue{}, false
	}
	var value JSONValue
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return JSONValue{}, false
	}
	return value, true
}

func claimFromJSON(item JSONValue) (claim, bool) {
	if number, ok := item.NumberValue(); ok {
		line := int(number)
		if float64(line) != number || line < 1 || number > math.MaxInt32 {
			return claim{}, false
		}
		return claim{text: strconv.Itoa(line), line: line}, true
	}
	if text, ok := item.StringValue(); ok {
		return parseClaim(text)
	}
	if object, ok := item.ObjectValue(); ok {
		number, ok := object["line"].NumberValue()
		if !ok {
			return claim{}, false
		}
		line := int(number)
		if float64(line) != number || line < 1 {
			return claim{}, false
		}
		symbol, _ := object["symbol"].StringValue()
		parsed := claim{line: line, symbol: strings.TrimSpace(symbol)}
		parsed.text = corpus.Point{Line: parsed.line, Symbol: parsed.symbol}.Label()
		return parsed, true
	}
	return claim{}, false
}

func renderJSONItem(item JSONValue) string {
	data, err := json.Marshal(item.ToInterface())
	if err != nil {
		return "?"
	}
	return string(data)
}

func verdictValue(value JSONValue) (bool, bool) {
	if direct, ok := value.BoolValue(); ok {
		return direct, true
	}
	text, ok := value.StringValue()
	if !ok {
		return false, false
	}
	return parseBooleanPhrase(text)
}
