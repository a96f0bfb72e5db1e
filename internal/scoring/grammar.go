package scoring

// grammarLadder is the metrics-only baseline for Grammatical Range &
// Accuracy. Utterance length proxies structural range; rate variability and
// repetition proxy reformulation and self-correction churn.
var grammarLadder = []rung{
	{8.5, func(m SpeechMetrics) bool {
		return m.MeanUtteranceLength >= 12 && m.SpeechRateVariability <= 0.35 && m.RepetitionRatio <= 0.03
	}},
	{8.0, func(m SpeechMetrics) bool {
		return m.MeanUtteranceLength >= 10 && m.SpeechRateVariability <= 0.45 && m.RepetitionRatio <= 0.045
	}},
	{7.5, func(m SpeechMetrics) bool {
		return m.MeanUtteranceLength >= 9 && m.SpeechRateVariability <= 0.55 && m.RepetitionRatio <= 0.06
	}},
	{7.0, func(m SpeechMetrics) bool {
		return m.MeanUtteranceLength >= 8 && m.SpeechRateVariability <= 0.65 && m.RepetitionRatio <= 0.08
	}},
	{6.5, func(m SpeechMetrics) bool {
		return m.MeanUtteranceLength >= 7 && m.SpeechRateVariability <= 0.80 && m.RepetitionRatio <= 0.10
	}},
	{6.0, func(m SpeechMetrics) bool {
		return m.MeanUtteranceLength >= 6 && m.SpeechRateVariability <= 0.95
	}},
}

// ScoreGrammar computes the metrics baseline, then conditions it on the LLM
// findings when present. Boosts require high complex-structure accuracy AND
// a low error count simultaneously; the accuracy ratio is undefined when no
// complex structures were attempted and is excluded from the gate rather
// than computed as 0/0. Penalties apply last so severe errors always win
// over a complexity boost.
func ScoreGrammar(m SpeechMetrics, f *LLMFindings) Band {
	score := evalLadder(grammarLadder, m, 5.5)
	if f == nil {
		return score
	}

	if ratio, ok := f.ComplexAccuracyRatio(); ok {
		switch {
		case ratio >= 0.90 && f.GrammarErrorCount <= 2 && score >= 7.0:
			score = min(score+0.5, MaxBand)
		case f.ComplexStructuresAttempted >= 5 && ratio >= 0.80 && f.GrammarErrorCount <= 4 && score >= 6.5:
			score = min(score+0.5, MaxBand)
		}
	}

	switch {
	case f.GrammarErrorCount >= 10:
		score = min(score, 6.0)
	case f.GrammarErrorCount >= 6:
		score = min(score, 6.5)
	}
	if f.CascadingGrammarFailure {
		score = min(score, 6.0)
	}
	if f.MeaningBlockingErrorRatio >= 0.30 {
		score = min(score, 5.5)
	}

	return clampBand(score)
}
