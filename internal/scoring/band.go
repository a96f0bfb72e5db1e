package scoring

import "math"

// Band is an IELTS band value: a multiple of 0.5 in [5.0, 9.0].
type Band float64

const (
	// MinBand is the lowest band this calibration models. Extremely limited
	// speech (below 5.0) is not distinguished further.
	MinBand Band = 5.0
	// MaxBand is the top of the IELTS scale.
	MaxBand Band = 9.0
)

// roundHalf rounds to the nearest half step.
func roundHalf(v float64) Band {
	return Band(math.Round(v*2) / 2)
}

func clampBand(b Band) Band {
	if b < MinBand {
		return MinBand
	}
	if b > MaxBand {
		return MaxBand
	}
	return b
}

// Criterion names one of the four IELTS speaking sub-scores.
type Criterion string

const (
	FluencyCoherence         Criterion = "fluency_coherence"
	Pronunciation            Criterion = "pronunciation"
	LexicalResource          Criterion = "lexical_resource"
	GrammaticalRangeAccuracy Criterion = "grammatical_range_accuracy"
)

// Criteria lists the four criteria in canonical order.
var Criteria = []Criterion{FluencyCoherence, Pronunciation, LexicalResource, GrammaticalRangeAccuracy}

// CriterionScores holds the four per-criterion bands for one analysis.
type CriterionScores struct {
	FluencyCoherence         Band `json:"fluency_coherence"`
	Pronunciation            Band `json:"pronunciation"`
	LexicalResource          Band `json:"lexical_resource"`
	GrammaticalRangeAccuracy Band `json:"grammatical_range_accuracy"`
}

// ByCriterion returns the band for the named criterion.
func (c CriterionScores) ByCriterion(cr Criterion) Band {
	switch cr {
	case FluencyCoherence:
		return c.FluencyCoherence
	case Pronunciation:
		return c.Pronunciation
	case LexicalResource:
		return c.LexicalResource
	case GrammaticalRangeAccuracy:
		return c.GrammaticalRangeAccuracy
	}
	return 0
}

// Mean is the arithmetic mean of the four criterion bands.
func (c CriterionScores) Mean() float64 {
	return (float64(c.FluencyCoherence) + float64(c.Pronunciation) +
		float64(c.LexicalResource) + float64(c.GrammaticalRangeAccuracy)) / 4
}

// Weakest returns the lowest-scoring criterion. Ties resolve in canonical
// criterion order so the result is deterministic.
func (c CriterionScores) Weakest() (Criterion, Band) {
	weakest := Criteria[0]
	low := c.ByCriterion(weakest)
	for _, cr := range Criteria[1:] {
		if b := c.ByCriterion(cr); b < low {
			weakest, low = cr, b
		}
	}
	return weakest, low
}

// MinBand returns the lowest of the four bands.
func (c CriterionScores) MinBand() Band {
	_, b := c.Weakest()
	return b
}

// MaxBand returns the highest of the four bands.
func (c CriterionScores) MaxBand() Band {
	high := c.FluencyCoherence
	for _, cr := range Criteria[1:] {
		if b := c.ByCriterion(cr); b > high {
			high = b
		}
	}
	return high
}

func (c CriterionScores) countAtOrBelow(limit Band) int {
	n := 0
	for _, cr := range Criteria {
		if c.ByCriterion(cr) <= limit {
			n++
		}
	}
	return n
}
