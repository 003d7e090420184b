package eval

import (
	"depeval/internal/corpus"
	"depeval/internal/extract"
	"depeval/internal/query"
)

// Score grades one successfully extracted prediction against the instance
// ground truth.
func Score(instance query.Instance, prediction extract.Prediction) Result {
	result := newResult(instance)
	result.Attempts = prediction.Attempts
	switch instance.Mode {
	case query.ModeTrace:
		trace := scoreTrace(instance, prediction)
		result.Trace = &trace
	default:
		source := scoreSources(instance.GoldSources, prediction.Sources, len(prediction.Unresolved))
		result.Source = &source
	}
	return result
}

// ScoreFailure records an extraction failure as a graded result. Failed
// instances carry no quality scores; they only feed the failure rate.
func ScoreFailure(instance query.Instance, failure *extract.Failure) Result {
	result := newResult(instance)
	result.ExtractionFailed = true
	if failure != nil {
		result.FailureReason = failure.Reason
	}
	return result
}

func newResult(instance query.Instance) Result {
	return Result{
		InstanceID: instance.ID,
		Task:       instance.Task,
		Language:   instance.Language,
		Mode:       instance.Mode,
		ProgramID:  instance.ProgramID,
	}
}

// scoreSources matches predicted points against gold points. A prediction
// matches a gold point on the same line when either side omits the symbol.
// Each predicted point matches at most one gold point. With an empty
// denominator precision and recall are 1, so an empty answer against an
// empty gold set scores a perfect 1.0.
func scoreSources(gold, predicted []corpus.Point, unresolved int) SourceScore {
	used := make([]bool, len(predicted))
	truePositives := 0
	for _, want := range gold {
		for i, have := range predicted {
			if used[i] {
				continue
			}
			if want.SameLocation(have) {
				used[i] = true
				truePositives++
				break
			}
		}
	}
	score := SourceScore{
		TruePositives:  truePositives,
		FalsePositives: len(predicted) - truePositives + unresolved,
		FalseNegatives: len(gold) - truePositives,
		Unresolved:     unresolved,
	}
	score.Precision = ratioOrOne(truePositives, truePositives+score.FalsePositives)
	score.Recall = ratioOrOne(truePositives, truePositives+score.FalseNegatives)
	if score.Precision+score.Recall > 0 {
		score.F1 = 2 * score.Precision * score.Recall / (score.Precision + score.Recall)
	}
	return score
}

func ratioOrOne(numerator, denominator int) float64 {
	if denominator == 0 {
		return 1
	}
	return float64(numerator) / float64(denominator)
}

// scoreTrace grades the verdict and, on a correct positive verdict with a
// recorded gold chain, the claimed chain. A wrong verdict never enters the
// chain check so chain exactness stays separate from classification.
func scoreTrace(instance query.Instance, prediction extract.Prediction) TraceScore {
	score := TraceScore{
		GoldRelated:      instance.GoldRelated,
		PredictedRelated: prediction.Related,
	}
	score.Correct = score.GoldRelated == score.PredictedRelated
	if !score.Correct || !score.GoldRelated || len(instance.GoldChain) == 0 {
		return score
	}
	score.ChainChecked = true
	score.ChainExact = chainsMatch(instance, prediction)
	return score
}

// chainsMatch compares the predicted chain to the gold chain after trimming
// the endpoints both sides already agree on, so answers may state the full
// path or only the intermediate points. Unresolved chain claims never match.
func chainsMatch(instance query.Instance, prediction extract.Prediction) bool {
	if len(prediction.ChainUnresolved) > 0 {
		return false
	}
	gold := trimChainEndpoints(instance.GoldChain, instance.CandidateSource, instance.Target)
	have := trimChainEndpoints(prediction.Chain, instance.CandidateSource, instance.Target)
	if len(gold) != len(have) {
		return false
	}
	for i := range gold {
		if !gold[i].SameLocation(have[i]) {
			return false
		}
	}
	return true
}

func trimChainEndpoints(chain []corpus.Point, source *corpus.Point, target corpus.Point) []corpus.Point {
	trimmed := chain
	if len(trimmed) > 0 && source != nil && trimmed[0].SameLocation(*source) {
		trimmed = trimmed[1:]
	}
	if len(trimmed) > 0 && trimmed[len(trimmed)-1].SameLocation(target) {
		trimmed = trimmed[:len(trimmed)-1]
	}
	return trimmed
}
