package extract

import (
	"strings"

	"depeval/internal/corpus"
	"depeval/internal/query"
)

// Failure reasons reported when no answer can be recovered.
const (
	ReasonEmptyResponse   = "empty_response"
	ReasonNoAnswer        = "no_recognizable_answer"
	ReasonAmbiguous       = "ambiguous_answer"
	ReasonMissingResponse = "missing_response"
)

// Prediction is the machine-readable answer recovered from a response.
// Unresolved holds claims that named lines the analyzer never recorded;
// they still count against precision. Attempts reports how many retry
// responses were consumed before one yielded an answer.
type Prediction struct {
	Mode            query.Mode
	Sources         []corpus.Point
	Unresolved      []string
	Related         bool
	Chain           []corpus.Point
	ChainUnresolved []string
	Attempts        int
}

// Failure explains why no answer could be recovered from a response. The
// raw text is retained for inspection.
type Failure struct {
	Reason string
	Raw    string
}

// Extract recovers a prediction from one response text. Fenced JSON blocks
// are tried last to first against the answer schema; free text parsing over
// the remainder is the fallback. Extraction never consults ground truth.
func Extract(raw string, instance query.Instance, record corpus.ScanRecord) (Prediction, *Failure) {
	if strings.TrimSpace(raw) == "" {
		return Prediction{}, &Failure{Reason: ReasonEmptyResponse, Raw: raw}
	}
	if instance.Mode == query.ModeTrace {
		return extractTrace(raw, record)
	}
	return extractSource(raw, record)
}

// ExtractAttempts recovers a prediction from a sequence of retry responses.
// The first attempt that yields an answer wins and the attempt count is
// recorded; when every attempt fails the final failure is reported.
func ExtractAttempts(attempts []string, instance query.Instance, record corpus.ScanRecord) (Prediction, *Failure) {
	if len(attempts) == 0 {
		return Prediction{}, &Failure{Reason: ReasonMissingResponse}
	}
	var last *Failure
	for i, raw := range attempts {
		prediction, failure := Extract(raw, instance, record)
		if failure == nil {
			prediction.Attempts = i + 1
			return prediction, nil
		}
		last = failure
	}
	return Prediction{}, last
}

func extractSource(raw string, record corpus.ScanRecord) (Prediction, *Failure) {
	blocks := fencedBlocks(raw)
	for i := len(blocks) - 1; i >= 0; i-- {
		points, unresolved, ok := sourceFromJSON(blocks[i], record)
		if !ok {
			continue
		}
		return Prediction{Mode: query.ModeSource, Sources: points, Unresolved: unresolved, Attempts: 1}, nil
	}

	text := stripFencedBlocks(raw)
	claims, empty, found := findListAnswer(text)
	if !found {
		return Prediction{}, &Failure{Reason: ReasonNoAnswer, Raw: raw}
	}
	if empty {
		return Prediction{Mode: query.ModeSource, Sources: []corpus.Point{}, Attempts: 1}, nil
	}
	points, unresolved := resolveClaims(record, claims)
	return Prediction{Mode: query.ModeSource, Sources: points, Unresolved: unresolved, Attempts: 1}, nil
}

func extractTrace(raw string, record corpus.ScanRecord) (Prediction, *Failure) {
	blocks := fencedBlocks(raw)
	for i := len(blocks) - 1; i >= 0; i-- {
		related, chain, chainUnresolved, ok := traceFromJSON(blocks[i], record)
		if !ok {
			continue
		}
		return Prediction{
			Mode:            query.ModeTrace,
			Related:         related,
			Chain:           chain,
			ChainUnresolved: chainUnresolved,
			Attempts:        1,
		}, nil
	}

	text := stripFencedBlocks(raw)
	related, found, ambiguous := findBooleanAnswer(text)
	if ambiguous {
		return Prediction{}, &Failure{Reason: ReasonAmbiguous, Raw: raw}
	}
	if !found {
		return Prediction{}, &Failure{Reason: ReasonNoAnswer, Raw: raw}
	}
	prediction := Prediction{Mode: query.ModeTrace, Related: related, Attempts: 1}
	if claims, ok := findChainClaims(text); ok {
		prediction.Chain, prediction.ChainUnresolved = resolveChainClaims(record, claims)
	}
	return prediction, nil
}
