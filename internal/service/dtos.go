package service

import (
	"time"

	"github.com/speechband/band-server/internal/scoring"
)

// SubmitAnalysisRequest carries one analyzed speech sample into scoring.
// Findings is optional; nil selects metrics-only scoring.
type SubmitAnalysisRequest struct {
	Metrics    scoring.SpeechMetrics
	Findings   *scoring.LLMFindings
	Transcript string
}

// AnalysisResult is a stored, scored analysis.
type AnalysisResult struct {
	ID        int64
	CreatedAt time.Time
	Report    scoring.Report
}

// AnalysisSummary is the listing row for one analysis.
type AnalysisSummary struct {
	ID               int64
	CreatedAt        time.Time
	OverallBand      float64
	Confidence       float64
	AudioDurationSec float64
}

type PeriodBand struct {
	Period   string
	MeanBand float64
}

// AggregatedCriterionBands holds per-criterion (daily or weekly) band
// aggregates for a reporting window.
type AggregatedCriterionBands struct {
	Criterion       string
	TotalAnalyses   int
	OverallMeanBand float64
	PeriodBands     []PeriodBand
}

// OverallBandAverage is the windowed mean overall band.
type OverallBandAverage struct {
	MeanBand float64
	Count    int64
}
