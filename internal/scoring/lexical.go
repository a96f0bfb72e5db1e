package scoring

// lexicalLadder is the metrics-only baseline for Lexical Resource, scored
// jointly on vocabulary richness and lexical density.
var lexicalLadder = []rung{
	{8.5, func(m SpeechMetrics) bool { return m.VocabRichness >= 0.62 && m.LexicalDensity >= 0.52 }},
	{8.0, func(m SpeechMetrics) bool { return m.VocabRichness >= 0.57 && m.LexicalDensity >= 0.48 }},
	{7.5, func(m SpeechMetrics) bool { return m.VocabRichness >= 0.52 && m.LexicalDensity >= 0.45 }},
	{7.0, func(m SpeechMetrics) bool { return m.VocabRichness >= 0.47 && m.LexicalDensity >= 0.42 }},
	{6.5, func(m SpeechMetrics) bool { return m.VocabRichness >= 0.42 && m.LexicalDensity >= 0.39 }},
	{6.0, func(m SpeechMetrics) bool { return m.VocabRichness >= 0.37 && m.LexicalDensity >= 0.35 }},
}

// ScoreLexical computes the metrics baseline, then conditions it on the LLM
// findings when present. Penalties always apply, even to a high baseline.
// Boosts are double-gated: they need both a qualifying finding AND a metrics
// baseline already above a stringent secondary floor, so a borderline sample
// cannot be pushed into a top band by LLM over-counting alone. Boosts are
// re-capped against the penalty ceiling so they can never undo a penalty.
func ScoreLexical(m SpeechMetrics, f *LLMFindings) Band {
	score := evalLadder(lexicalLadder, m, 5.5)
	if f == nil {
		return score
	}

	ceiling := MaxBand
	if !f.TopicRelevance {
		ceiling = min(ceiling, 6.5)
	}
	if f.FlowInstabilityPresent || f.ListenerEffortHigh {
		ceiling = min(ceiling, 7.0)
	}
	if f.RegisterMismatchCount >= 2 {
		ceiling = min(ceiling, 6.5)
	}
	if m.UniqueWordCount > 0 {
		errRatio := float64(f.WordChoiceErrorCount) / float64(m.UniqueWordCount)
		switch {
		case errRatio >= 0.10:
			ceiling = min(ceiling, 6.0)
		case errRatio >= 0.05:
			ceiling = min(ceiling, 6.5)
		}
	}
	score = min(score, ceiling)

	switch {
	case f.AdvancedVocabularyCount >= 8 && m.VocabRichness >= 0.55 && score >= 7.5:
		score = min(score+0.5, ceiling, MaxBand)
	case f.AdvancedVocabularyCount >= 5 && m.VocabRichness >= 0.50 && score >= 7.0:
		score = min(score+0.5, ceiling, MaxBand)
	}
	// Idiomatic use counts only when the register is consistently clean.
	if f.IdiomaticCollocationCount >= 3 && f.RegisterMismatchCount == 0 &&
		m.VocabRichness >= 0.50 && score >= 7.0 {
		score = min(score+0.5, ceiling, MaxBand)
	}

	return clampBand(score)
}
