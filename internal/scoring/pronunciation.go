package scoring

// pronunciationLadder scores intelligibility from the transcription
// confidence signal: mean per-word confidence and the fraction of words
// below the clarity threshold. Clarity is measured acoustically, so this
// criterion deliberately has no LLM-based override. The monotone-speech flag
// is surfaced in feedback only, never in the band, to avoid double-penalizing.
var pronunciationLadder = []rung{
	{8.5, func(m SpeechMetrics) bool { return m.MeanWordConfidence >= 0.88 && m.LowConfidenceRatio <= 0.15 }},
	{8.0, func(m SpeechMetrics) bool { return m.MeanWordConfidence >= 0.85 && m.LowConfidenceRatio <= 0.20 }},
	{7.5, func(m SpeechMetrics) bool { return m.MeanWordConfidence >= 0.82 && m.LowConfidenceRatio <= 0.25 }},
	{7.0, func(m SpeechMetrics) bool { return m.MeanWordConfidence >= 0.79 && m.LowConfidenceRatio <= 0.30 }},
	{6.5, func(m SpeechMetrics) bool { return m.MeanWordConfidence >= 0.76 && m.LowConfidenceRatio <= 0.36 }},
	{6.0, func(m SpeechMetrics) bool { return m.MeanWordConfidence >= 0.73 && m.LowConfidenceRatio <= 0.43 }},
	{5.5, func(m SpeechMetrics) bool { return m.MeanWordConfidence >= 0.70 && m.LowConfidenceRatio <= 0.50 }},
}

// ScorePronunciation maps the clarity metrics onto a band.
func ScorePronunciation(m SpeechMetrics) Band {
	return evalLadder(pronunciationLadder, m, 5.5)
}
