package scoring

// LLMFindings is the categorical/count vector produced by the upstream
// semantic annotation extractor. It is optional: a nil *LLMFindings selects
// metrics-only scoring, which is a fully supported mode, not a fallback.
//
// Defaults are filled here, at the boundary, so the scorers can assume a
// fully-populated value whenever the pointer is non-nil.
type LLMFindings struct {
	TopicRelevance             bool    `json:"topic_relevance"`
	ListenerEffortHigh         bool    `json:"listener_effort_high"`
	FlowInstabilityPresent     bool    `json:"flow_instability_present"`
	CoherenceBreakCount        int     `json:"coherence_break_count"`
	WordChoiceErrorCount       int     `json:"word_choice_error_count"`
	GrammarErrorCount          int     `json:"grammar_error_count"`
	AdvancedVocabularyCount    int     `json:"advanced_vocabulary_count"`
	IdiomaticCollocationCount  int     `json:"idiomatic_collocation_count"`
	RegisterMismatchCount      int     `json:"register_mismatch_count"`
	ComplexStructuresAttempted int     `json:"complex_structures_attempted"`
	ComplexStructuresAccurate  int     `json:"complex_structures_accurate"`
	CascadingGrammarFailure    bool    `json:"cascading_grammar_failure"`
	MeaningBlockingErrorRatio  float64 `json:"meaning_blocking_error_ratio"`
}

// Normalize returns a normalized copy, or nil for nil input. Counts are
// forced non-negative and accurate structures can never exceed attempted.
func (f *LLMFindings) Normalize() *LLMFindings {
	if f == nil {
		return nil
	}
	out := *f
	for _, n := range []*int{
		&out.CoherenceBreakCount,
		&out.WordChoiceErrorCount,
		&out.GrammarErrorCount,
		&out.AdvancedVocabularyCount,
		&out.IdiomaticCollocationCount,
		&out.RegisterMismatchCount,
		&out.ComplexStructuresAttempted,
		&out.ComplexStructuresAccurate,
	} {
		if *n < 0 {
			*n = 0
		}
	}
	if out.ComplexStructuresAccurate > out.ComplexStructuresAttempted {
		out.ComplexStructuresAccurate = out.ComplexStructuresAttempted
	}
	out.MeaningBlockingErrorRatio = clampRatio(out.MeaningBlockingErrorRatio)
	return &out
}

// ComplexAccuracyRatio derives accurate/attempted. The ratio is undefined
// when nothing was attempted; callers must check ok before using it.
func (f *LLMFindings) ComplexAccuracyRatio() (ratio float64, ok bool) {
	if f == nil || f.ComplexStructuresAttempted == 0 {
		return 0, false
	}
	return float64(f.ComplexStructuresAccurate) / float64(f.ComplexStructuresAttempted), true
}

// errorCategoryCount reports how many distinct error-type categories are
// simultaneously non-zero. Many weak scattered signals are treated as less
// reliable than a few consistent ones.
func (f *LLMFindings) errorCategoryCount() int {
	n := 0
	if f.GrammarErrorCount > 0 {
		n++
	}
	if f.WordChoiceErrorCount > 0 {
		n++
	}
	if f.CoherenceBreakCount > 0 {
		n++
	}
	if f.RegisterMismatchCount > 0 {
		n++
	}
	if f.MeaningBlockingErrorRatio > 0 {
		n++
	}
	if f.CascadingGrammarFailure {
		n++
	}
	return n
}
