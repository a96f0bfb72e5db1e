package scoring

// fluencyLadder maps speech pace, pausing and repetition onto the Fluency &
// Coherence band. Each rung is jointly conjunctive: fast speech riddled with
// long pauses does not reach the fast-speech band.
var fluencyLadder = []rung{
	{8.5, func(m SpeechMetrics) bool {
		return m.WPM >= 150 && m.LongPausesPerMin <= 0.5 && m.PauseVariability <= 0.40 && m.RepetitionRatio <= 0.035
	}},
	{8.0, func(m SpeechMetrics) bool {
		return m.WPM >= 130 && m.LongPausesPerMin <= 1.0 && m.PauseVariability <= 0.60 && m.RepetitionRatio <= 0.050
	}},
	{7.5, func(m SpeechMetrics) bool {
		return m.WPM >= 110 && m.LongPausesPerMin <= 1.5 && m.PauseVariability <= 0.75 && m.RepetitionRatio <= 0.065
	}},
	{7.0, func(m SpeechMetrics) bool {
		return m.WPM >= 90 && m.LongPausesPerMin <= 2.0 && m.PauseVariability <= 1.0
	}},
	{6.5, func(m SpeechMetrics) bool {
		return m.WPM >= 80 && m.LongPausesPerMin <= 2.5 && m.PauseVariability <= 1.2
	}},
	{6.0, func(m SpeechMetrics) bool {
		return m.WPM >= 70 && m.LongPausesPerMin <= 3.0
	}},
}

// ScoreFluency maps the fluency-related metrics onto a band. It always
// returns a valid band; heavily paused or highly variable speech lands on
// the 5.5 floor.
func ScoreFluency(m SpeechMetrics) Band {
	return evalLadder(fluencyLadder, m, 5.5)
}
