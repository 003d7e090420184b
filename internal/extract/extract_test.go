package extract

import (
	"testing"

	"depeval/internal/corpus"
	"depeval/internal/query"
)

func testRecord() corpus.ScanRecord {
	return corpus.ScanRecord{
		File:      "programs/p001_s0001_calc_3_12.c",
		Function:  "calc",
		StartLine: 3,
		EndLine:   12,
		Lines:     []int{3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		Branches:  []int{6},
		Defs: map[string][]int{
			"x": {4, 7},
			"y": {5},
			"w": {9, 10},
		},
		Uses: map[string][]int{
			"x": {8, 10},
			"y": {7, 8},
			"w": {11},
		},
	}
}

func sourceInstance() query.Instance {
	return query.Instance{Mode: query.ModeSource}
}

func traceInstance() query.Instance {
	return query.Instance{Mode: query.ModeTrace}
}

// TestExtractSourceFencedJSON verifies fenced JSON answers win over prose.
func TestExtractSourceFencedJSON(t *testing.T) {
	raw := "The sources are L4 and maybe others.\n```json\n{\"sources\": [\"L4:x\", 7]}\n```\n"
	prediction, failure := Extract(raw, sourceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if len(prediction.Sources) != 2 || prediction.Sources[0].Label() != "L4:x" || prediction.Sources[1].Label() != "L7" {
		t.Fatalf("unexpected sources: %+v", prediction.Sources)
	}
	if prediction.Attempts != 1 || len(prediction.Unresolved) != 0 {
		t.Fatalf("unexpected prediction: %+v", prediction)
	}
}

// TestExtractSourceLastBlockWins verifies later fenced blocks take priority.
func TestExtractSourceLastBlockWins(t *testing.T) {
	raw := "```json\n[4]\n```\nOn reflection:\n```json\n[7, 10]\n```\n"
	prediction, failure := Extract(raw, sourceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if len(prediction.Sources) != 2 || prediction.Sources[0].Line != 7 || prediction.Sources[1].Line != 10 {
		t.Fatalf("unexpected sources: %+v", prediction.Sources)
	}
}

// TestExtractSourceInvalidLastBlock verifies earlier valid blocks still count.
func TestExtractSourceInvalidLastBlock(t *testing.T) {
	raw := "```json\n[4]\n```\n```\nnot json at all\n```\n"
	prediction, failure := Extract(raw, sourceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if len(prediction.Sources) != 1 || prediction.Sources[0].Line != 4 {
		t.Fatalf("unexpected sources: %+v", prediction.Sources)
	}
}

// TestExtractSourceEmptyJSONAnswer verifies an empty array is a valid answer.
func TestExtractSourceEmptyJSONAnswer(t *testing.T) {
	prediction, failure := Extract("```json\n[]\n```", sourceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if prediction.Sources == nil || len(prediction.Sources) != 0 {
		t.Fatalf("unexpected sources: %+v", prediction.Sources)
	}
}

// TestExtractSourceUnresolvedClaim verifies out-of-program lines stay
// unresolved without failing extraction.
func TestExtractSourceUnresolvedClaim(t *testing.T) {
	prediction, failure := Extract("```json\n{\"answer\": [\"L99\", 4]}\n```", sourceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if len(prediction.Sources) != 1 || prediction.Sources[0].Line != 4 {
		t.Fatalf("unexpected sources: %+v", prediction.Sources)
	}
	if len(prediction.Unresolved) != 1 || prediction.Unresolved[0] != "L99" {
		t.Fatalf("unexpected unresolved: %+v", prediction.Unresolved)
	}
}

// TestExtractSourceMarkerList verifies marker-introduced inline lists.
func TestExtractSourceMarkerList(t *testing.T) {
	raw := "Looking at the flow, the dependency sources: L4, L7, and L10."
	prediction, failure := Extract(raw, sourceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if len(prediction.Sources) != 3 {
		t.Fatalf("unexpected sources: %+v", prediction.Sources)
	}
}

// TestExtractSourceBulletList verifies bullet lists below a marker.
func TestExtractSourceBulletList(t *testing.T) {
	raw := "Answer:\n- L4 (initial definition)\n- line 7\nTrailing commentary follows here."
	prediction, failure := Extract(raw, sourceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if len(prediction.Sources) != 2 || prediction.Sources[0].Line != 4 || prediction.Sources[1].Line != 7 {
		t.Fatalf("unexpected sources: %+v", prediction.Sources)
	}
}

// TestExtractSourceLexicalStop verifies parsing stops at the first item
// that is not a point reference.
func TestExtractSourceLexicalStop(t *testing.T) {
	raw := "Sources: L4, the later assignment, L7"
	prediction, failure := Extract(raw, sourceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if len(prediction.Sources) != 1 || prediction.Sources[0].Line != 4 {
		t.Fatalf("unexpected sources: %+v", prediction.Sources)
	}
}

// TestExtractSourceBareList verifies a response that is only a list.
func TestExtractSourceBareList(t *testing.T) {
	prediction, failure := Extract("L4, L7\n", sourceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if len(prediction.Sources) != 2 {
		t.Fatalf("unexpected sources: %+v", prediction.Sources)
	}
}

// TestExtractSourceEmptyPhrases verifies empty-set phrasings.
func TestExtractSourceEmptyPhrases(t *testing.T) {
	for _, raw := range []string{"Answer: none.", "No dependencies.", "Sources: none of them remain."} {
		prediction, failure := Extract(raw, sourceInstance(), testRecord())
		if failure != nil {
			t.Fatalf("unexpected failure for %q: %+v", raw, failure)
		}
		if len(prediction.Sources) != 0 || len(prediction.Unresolved) != 0 {
			t.Fatalf("expected empty answer for %q, got %+v", raw, prediction)
		}
	}
}

// TestExtractSourceNoAnswer verifies unrecognizable responses fail.
func TestExtractSourceNoAnswer(t *testing.T) {
	_, failure := Extract("I cannot analyze this program.", sourceInstance(), testRecord())
	if failure == nil || failure.Reason != ReasonNoAnswer {
		t.Fatalf("expected no-answer failure, got %+v", failure)
	}
}

// TestExtractEmptyResponse verifies blank responses fail distinctly.
func TestExtractEmptyResponse(t *testing.T) {
	_, failure := Extract("  \n ", sourceInstance(), testRecord())
	if failure == nil || failure.Reason != ReasonEmptyResponse {
		t.Fatalf("expected empty-response failure, got %+v", failure)
	}
}

// TestExtractTraceFencedJSON verifies trace JSON answers with chains.
func TestExtractTraceFencedJSON(t *testing.T) {
	raw := "```json\n{\"dependent\": true, \"chain\": [\"L5:y\", \"L8\", 10]}\n```"
	prediction, failure := Extract(raw, traceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if !prediction.Related || len(prediction.Chain) != 3 || prediction.Chain[0].Symbol != "y" {
		t.Fatalf("unexpected prediction: %+v", prediction)
	}
}

// TestExtractTraceJSONStringVerdict verifies string verdict fields.
func TestExtractTraceJSONStringVerdict(t *testing.T) {
	prediction, failure := Extract("```json\n{\"answer\": \"no\"}\n```", traceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if prediction.Related {
		t.Fatalf("expected unrelated, got %+v", prediction)
	}
}

// TestExtractTraceLeadingVerdict verifies verdicts at the start of the text.
func TestExtractTraceLeadingVerdict(t *testing.T) {
	prediction, failure := Extract("Yes, the value written at L7 reaches L10. No other path exists.", traceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if !prediction.Related {
		t.Fatalf("expected related, got %+v", prediction)
	}
}

// TestExtractTraceMarkerVerdict verifies the answer marker overrides
// earlier verdict words.
func TestExtractTraceMarkerVerdict(t *testing.T) {
	raw := "The pair looks dependent at first glance. Answer: independent."
	prediction, failure := Extract(raw, traceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if prediction.Related {
		t.Fatalf("expected unrelated, got %+v", prediction)
	}
}

// TestExtractTraceNegatedVerdict verifies negation flips the verdict.
func TestExtractTraceNegatedVerdict(t *testing.T) {
	prediction, failure := Extract("Answer: not dependent.", traceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if prediction.Related {
		t.Fatalf("expected unrelated, got %+v", prediction)
	}
}

// TestExtractTraceUnanimousVerdict verifies a single verdict deep in prose.
func TestExtractTraceUnanimousVerdict(t *testing.T) {
	raw := "The write at L7 reaches the read, so the pair is dependent."
	prediction, failure := Extract(raw, traceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if !prediction.Related {
		t.Fatalf("expected related, got %+v", prediction)
	}
}

// TestExtractTraceAmbiguous verifies conflicting verdicts fail extraction.
func TestExtractTraceAmbiguous(t *testing.T) {
	raw := "Possibly yes. On reflection the claim is false."
	_, failure := Extract(raw, traceInstance(), testRecord())
	if failure == nil || failure.Reason != ReasonAmbiguous {
		t.Fatalf("expected ambiguous failure, got %+v", failure)
	}
}

// TestExtractTraceChainText verifies inline chains after a chain marker.
func TestExtractTraceChainText(t *testing.T) {
	raw := "Yes. Path: L5 -> L8 -> L10."
	prediction, failure := Extract(raw, traceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if !prediction.Related || len(prediction.Chain) != 3 || prediction.Chain[1].Line != 8 {
		t.Fatalf("unexpected prediction: %+v", prediction)
	}
}

// TestExtractTraceRejectedFenceStripped verifies rejected JSON blocks do
// not leak verdict words into text parsing.
func TestExtractTraceRejectedFenceStripped(t *testing.T) {
	raw := "```json\n{\"dependent\": \"maybe\", \"extra\": 1}\n```\nAnswer: no."
	prediction, failure := Extract(raw, traceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if prediction.Related {
		t.Fatalf("expected unrelated, got %+v", prediction)
	}
}

// TestExtractAttempts verifies the first parseable retry wins.
func TestExtractAttempts(t *testing.T) {
	attempts := []string{"I will answer in the requested format next time.", "```json\n{\"sources\": [4]}\n```"}
	prediction, failure := ExtractAttempts(attempts, sourceInstance(), testRecord())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if prediction.Attempts != 2 || len(prediction.Sources) != 1 {
		t.Fatalf("unexpected prediction: %+v", prediction)
	}
}

// TestExtractAttemptsAllFail verifies the final failure is reported.
func TestExtractAttemptsAllFail(t *testing.T) {
	_, failure := ExtractAttempts([]string{"no usable content here", ""}, sourceInstance(), testRecord())
	if failure == nil || failure.Reason != ReasonEmptyResponse {
		t.Fatalf("expected final failure, got %+v", failure)
	}
}

// TestExtractAttemptsMissing verifies empty attempt lists fail distinctly.
func TestExtractAttemptsMissing(t *testing.T) {
	_, failure := ExtractAttempts(nil, sourceInstance(), testRecord())
	if failure == nil || failure.Reason != ReasonMissingResponse {
		t.Fatalf("expected missing-response failure, got %+v", failure)
	}
}
