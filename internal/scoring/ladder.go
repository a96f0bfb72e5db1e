package scoring

// rung pairs one conjunctive threshold check with the band it awards.
// Ladders are evaluated top-down and the first satisfied rung wins, so a
// single excellent metric cannot compensate for a poor one within a
// criterion; cross-criterion compensation happens in the aggregator only.
type rung struct {
	band  Band
	match func(m SpeechMetrics) bool
}

// evalLadder walks the rungs in order and returns the first match, or
// fallback when no rung is satisfied. Ladder tables are immutable
// configuration: built once, never mutated.
func evalLadder(rungs []rung, m SpeechMetrics, fallback Band) Band {
	for _, r := range rungs {
		if r.match(m) {
			return r.band
		}
	}
	return fallback
}
