package scoring

// ScoreOverall combines the four criterion bands into the overall band.
//
// The mean is rounded to the nearest half step, then IELTS-style hard
// ceilings apply: overall competence is limited by the weakest demonstrated
// skill, not averaged away by a strong one. When several ceilings fire the
// most restrictive one wins, and the result is re-rounded and re-clamped, so
// the 4.8 double-weakness ceiling lands on the 5.0 scale floor.
func ScoreOverall(c CriterionScores) Band {
	overall := clampBand(roundHalf(c.Mean()))

	ceiling := float64(MaxBand)
	if c.MinBand() <= 4.5 {
		ceiling = min(ceiling, 5.0)
	}
	if c.countAtOrBelow(5.0) >= 2 {
		ceiling = min(ceiling, 4.8)
	}
	// Lexical resource conspicuously the weak link against an otherwise
	// strong profile caps the whole performance.
	if c.LexicalResource <= 6.5 && c.MaxBand() >= 8.0 {
		ceiling = min(ceiling, 7.0)
	}

	if float64(overall) > ceiling {
		overall = roundHalf(ceiling)
	}
	return clampBand(overall)
}
