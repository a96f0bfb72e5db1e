package scoring

import "fmt"

// ConfidenceCategory is one of five ordered reliability labels.
type ConfidenceCategory string

const (
	ConfidenceVeryHigh ConfidenceCategory = "VERY_HIGH"
	ConfidenceHigh     ConfidenceCategory = "HIGH"
	ConfidenceModerate ConfidenceCategory = "MODERATE"
	ConfidenceLow      ConfidenceCategory = "LOW"
	ConfidenceVeryLow  ConfidenceCategory = "VERY_LOW"
)

// ConfidenceFactor records one factor's contribution. Multiplier factors
// carry Multiplier (Adjustment zero); additive factors carry Adjustment
// (Multiplier zero). The reason string is a hard requirement: confidence is
// meant to be audited, not just reported.
type ConfidenceFactor struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier,omitempty"`
	Adjustment float64 `json:"adjustment,omitempty"`
	Reason     string  `json:"reason"`
}

// FactorBreakdown is the fixed, closed set of confidence factors. The two
// LLM-dependent factors are present only when findings were supplied.
type FactorBreakdown struct {
	Duration          ConfidenceFactor  `json:"duration"`
	AudioClarity      ConfidenceFactor  `json:"audio_clarity"`
	LLMConsistency    *ConfidenceFactor `json:"llm_consistency,omitempty"`
	BoundaryProximity ConfidenceFactor  `json:"boundary_proximity"`
	GamingDetection   *ConfidenceFactor `json:"gaming_detection,omitempty"`
	Coherence         ConfidenceFactor  `json:"cross_criterion_coherence"`
}

// ConfidenceResult is the calibrated reliability estimate for one scoring
// pass. Purely derived, never mutated.
type ConfidenceResult struct {
	OverallConfidence float64            `json:"overall_confidence"`
	Category          ConfidenceCategory `json:"confidence_category"`
	FactorBreakdown   FactorBreakdown    `json:"factor_breakdown"`
	Recommendation    string             `json:"recommendation"`
}

const gamingPenaltyFloor = -0.40

// ComputeConfidence estimates how trustworthy the band result is. Multiplier
// factors compose by multiplication from 1.0; additive factors sum on top;
// the total is clamped into [0, 1].
func ComputeConfidence(m SpeechMetrics, scores CriterionScores, overall Band, f *LLMFindings) ConfidenceResult {
	duration := durationFactor(m.AudioDurationSec)
	clarity := clarityFactor(m.LowConfidenceRatio)
	boundary := boundaryFactor(overall)
	coherence := coherenceFactor(scores)

	breakdown := FactorBreakdown{
		Duration:          duration,
		AudioClarity:      clarity,
		BoundaryProximity: boundary,
		Coherence:         coherence,
	}

	product := duration.Multiplier * clarity.Multiplier
	adjustments := boundary.Adjustment + coherence.Adjustment

	if f != nil {
		consistency := llmConsistencyFactor(f)
		gaming := gamingFactor(f)
		breakdown.LLMConsistency = &consistency
		breakdown.GamingDetection = &gaming
		product *= consistency.Multiplier
		adjustments += gaming.Adjustment
	}

	confidence := product + adjustments
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	category, recommendation := categorize(confidence)
	return ConfidenceResult{
		OverallConfidence: confidence,
		Category:          category,
		FactorBreakdown:   breakdown,
		Recommendation:    recommendation,
	}
}

// durationFactor: short samples are intrinsically less statistically
// reliable.
func durationFactor(seconds float64) ConfidenceFactor {
	factor := ConfidenceFactor{Name: "duration"}
	switch {
	case seconds < 120:
		factor.Multiplier = 0.70
		factor.Reason = fmt.Sprintf("sample of %.0fs is under two minutes; band estimate has high variance", seconds)
	case seconds < 180:
		factor.Multiplier = 0.85
		factor.Reason = fmt.Sprintf("sample of %.0fs is under three minutes; estimate moderately reliable", seconds)
	case seconds < 300:
		factor.Multiplier = 0.95
		factor.Reason = fmt.Sprintf("sample of %.0fs is close to a full speaking test", seconds)
	default:
		factor.Multiplier = 1.0
		factor.Reason = fmt.Sprintf("sample of %.0fs meets the full-test duration", seconds)
	}
	return factor
}

func clarityFactor(lowConfidenceRatio float64) ConfidenceFactor {
	factor := ConfidenceFactor{Name: "audio_clarity"}
	pct := lowConfidenceRatio * 100
	switch {
	case lowConfidenceRatio <= 0.10:
		factor.Multiplier = 1.0
		factor.Reason = fmt.Sprintf("%.0f%% of words below the clarity threshold; audio is clean", pct)
	case lowConfidenceRatio <= 0.20:
		factor.Multiplier = 0.95
		factor.Reason = fmt.Sprintf("%.0f%% of words below the clarity threshold; minor recognition noise", pct)
	case lowConfidenceRatio <= 0.30:
		factor.Multiplier = 0.88
		factor.Reason = fmt.Sprintf("%.0f%% of words below the clarity threshold; metrics partially degraded", pct)
	case lowConfidenceRatio <= 0.40:
		factor.Multiplier = 0.78
		factor.Reason = fmt.Sprintf("%.0f%% of words below the clarity threshold; metrics substantially degraded", pct)
	default:
		factor.Multiplier = 0.65
		factor.Reason = fmt.Sprintf("%.0f%% of words below the clarity threshold; audio too noisy for reliable scoring", pct)
	}
	return factor
}

func llmConsistencyFactor(f *LLMFindings) ConfidenceFactor {
	n := f.errorCategoryCount()
	factor := ConfidenceFactor{
		Name:   "llm_consistency",
		Reason: fmt.Sprintf("%d distinct error categories reported by the semantic model", n),
	}
	switch {
	case n <= 1:
		factor.Multiplier = 1.0
	case n == 2:
		factor.Multiplier = 0.95
	case n == 3:
		factor.Multiplier = 0.90
	case n == 4:
		factor.Multiplier = 0.85
	default:
		factor.Multiplier = 0.78
	}
	return factor
}

// unstableBoundaries lists the overall bands the ceiling rules cluster
// around, where a half-step of input noise can flip the result.
var unstableBoundaries = map[Band]bool{5.0: true, 6.5: true, 7.0: true}

func boundaryFactor(overall Band) ConfidenceFactor {
	factor := ConfidenceFactor{Name: "boundary_proximity"}
	if unstableBoundaries[overall] {
		factor.Adjustment = -0.05
		factor.Reason = fmt.Sprintf("overall band %.1f sits on a rule-boundary where the ladder is less stable", float64(overall))
	} else {
		factor.Reason = fmt.Sprintf("overall band %.1f is away from unstable rule boundaries", float64(overall))
	}
	return factor
}

// gamingFactor penalizes signals of semantically incoherent or spammy
// content engineered to please the acoustic metrics.
func gamingFactor(f *LLMFindings) ConfidenceFactor {
	factor := ConfidenceFactor{Name: "gaming_detection"}
	var penalty float64
	var signals []string
	if !f.TopicRelevance {
		penalty -= 0.15
		signals = append(signals, "off-topic content")
	}
	if f.FlowInstabilityPresent {
		penalty -= 0.10
		signals = append(signals, "unstable discourse flow")
	}
	if f.ListenerEffortHigh {
		penalty -= 0.10
		signals = append(signals, "high listener effort")
	}
	if f.RegisterMismatchCount >= 2 {
		penalty -= 0.10
		signals = append(signals, fmt.Sprintf("%d register mismatches", f.RegisterMismatchCount))
	}
	if penalty < gamingPenaltyFloor {
		penalty = gamingPenaltyFloor
	}
	factor.Adjustment = penalty
	if len(signals) == 0 {
		factor.Reason = "no metric-gaming signals detected"
	} else {
		factor.Reason = "possible metric gaming: " + joinAnd(signals)
	}
	return factor
}

// coherenceFactor flags band combinations that are physically implausible
// for a real learner profile and more likely indicate measurement error.
func coherenceFactor(c CriterionScores) ConfidenceFactor {
	factor := ConfidenceFactor{Name: "cross_criterion_coherence"}
	switch {
	case c.FluencyCoherence > 7.5 && c.GrammaticalRangeAccuracy < 6.0:
		factor.Adjustment = -0.15
		factor.Reason = "fluency far above grammar; combination is implausible for a real learner profile"
	case c.LexicalResource > 8.0 && c.GrammaticalRangeAccuracy < 6.0:
		factor.Adjustment = -0.15
		factor.Reason = "lexical resource far above grammar; combination is implausible for a real learner profile"
	case c.Pronunciation > 8.0 && c.FluencyCoherence < 6.0:
		factor.Adjustment = -0.15
		factor.Reason = "pronunciation far above fluency; combination is implausible for a real learner profile"
	default:
		factor.Reason = "criterion bands form a plausible learner profile"
	}
	return factor
}

func categorize(confidence float64) (ConfidenceCategory, string) {
	switch {
	case confidence >= 0.95:
		return ConfidenceVeryHigh, "Estimate is highly reliable and suitable for automated reporting."
	case confidence >= 0.85:
		return ConfidenceHigh, "Estimate is reliable; spot-check only for high-stakes decisions."
	case confidence >= 0.75:
		return ConfidenceModerate, "Estimate is usable; consider a second sample for high-stakes decisions."
	case confidence >= 0.60:
		return ConfidenceLow, "Estimate is indicative only; collect a longer or cleaner sample before relying on it."
	default:
		return ConfidenceVeryLow, "Estimate should not be relied on; re-record with better audio and more speech."
	}
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	out := items[0]
	for _, s := range items[1 : len(items)-1] {
		out += ", " + s
	}
	return out + " and " + items[len(items)-1]
}
