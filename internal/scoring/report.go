// Package scoring estimates IELTS Speaking band scores from acoustic and
// linguistic signal. The whole package is a stateless pipeline of pure
// functions: the only cross-call state is a set of immutable threshold
// tables, so any number of analyses may run in parallel with no
// coordination.
package scoring

// Report is the complete result of one scoring pass: the overall band, the
// four criterion bands, the calibrated confidence estimate and the
// structured feedback. It carries no serialization assumptions; downstream
// layers shape it however they expose it.
type Report struct {
	OverallBand     Band             `json:"overall_band"`
	CriterionScores CriterionScores  `json:"criterion_scores"`
	Confidence      ConfidenceResult `json:"confidence"`
	Feedback        FeedbackReport   `json:"feedback"`
}

// Score runs the full pipeline over one immutable input snapshot. findings
// may be nil (metrics-only mode). Identical inputs always produce an
// identical Report.
func Score(m SpeechMetrics, findings *LLMFindings, transcript string) Report {
	m = m.Normalize()
	findings = findings.Normalize()

	scores := CriterionScores{
		FluencyCoherence:         ScoreFluency(m),
		Pronunciation:            ScorePronunciation(m),
		LexicalResource:          ScoreLexical(m, findings),
		GrammaticalRangeAccuracy: ScoreGrammar(m, findings),
	}
	overall := ScoreOverall(scores)

	return Report{
		OverallBand:     overall,
		CriterionScores: scores,
		Confidence:      ComputeConfidence(m, scores, overall, findings),
		Feedback:        BuildFeedback(scores, overall, m, findings, transcript),
	}
}
