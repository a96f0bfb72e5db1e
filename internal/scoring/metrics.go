package scoring

// SpeechMetrics is the flat numeric feature vector produced by the upstream
// audio analysis pipeline. It is consumed read-only; fields missing from the
// upstream payload decode to their zero value, which routes scoring toward
// the conservative end rather than failing.
type SpeechMetrics struct {
	WPM                   float64 `json:"wpm"`
	LongPausesPerMin      float64 `json:"long_pauses_per_min"`
	PauseVariability      float64 `json:"pause_variability"`
	RepetitionRatio       float64 `json:"repetition_ratio"`
	MeanWordConfidence    float64 `json:"mean_word_confidence"`
	LowConfidenceRatio    float64 `json:"low_confidence_ratio"`
	VocabRichness         float64 `json:"vocab_richness"`
	LexicalDensity        float64 `json:"lexical_density"`
	MeanUtteranceLength   float64 `json:"mean_utterance_length"`
	SpeechRateVariability float64 `json:"speech_rate_variability"`
	AudioDurationSec      float64 `json:"audio_duration_sec"`
	UniqueWordCount       int     `json:"unique_word_count"`
	FillersPerMin         float64 `json:"fillers_per_min"`
	IsMonotone            bool    `json:"is_monotone"`
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Normalize returns a copy with every field forced into its documented range.
// Malformed upstream values degrade scoring quality instead of crashing it.
func (m SpeechMetrics) Normalize() SpeechMetrics {
	m.WPM = clampNonNegative(m.WPM)
	m.LongPausesPerMin = clampNonNegative(m.LongPausesPerMin)
	m.PauseVariability = clampNonNegative(m.PauseVariability)
	m.RepetitionRatio = clampRatio(m.RepetitionRatio)
	m.MeanWordConfidence = clampRatio(m.MeanWordConfidence)
	m.LowConfidenceRatio = clampRatio(m.LowConfidenceRatio)
	m.VocabRichness = clampRatio(m.VocabRichness)
	m.LexicalDensity = clampRatio(m.LexicalDensity)
	m.MeanUtteranceLength = clampNonNegative(m.MeanUtteranceLength)
	m.SpeechRateVariability = clampNonNegative(m.SpeechRateVariability)
	m.AudioDurationSec = clampNonNegative(m.AudioDurationSec)
	if m.UniqueWordCount < 0 {
		m.UniqueWordCount = 0
	}
	m.FillersPerMin = clampNonNegative(m.FillersPerMin)
	return m
}
