package models

import "time"

// AnalysisRecord is the persisted form of one scored analysis. ReportJSON
// holds the full report as produced by the scoring engine, so a stored
// analysis can be served back without rescoring.
type AnalysisRecord struct {
	ID               int64
	CreatedAt        time.Time
	AudioDurationSec float64
	TranscriptWords  int
	OverallBand      float64
	Confidence       float64
	ReportJSON       []byte
}

// CriterionBandRow is one per-criterion band attached to an analysis.
type CriterionBandRow struct {
	Criterion string
	Band      float64
}

// AggregatedCriterionData is one SQL-aggregated (criterion, period) bucket.
type AggregatedCriterionData struct {
	Criterion     string
	Period        string
	MeanBand      float64
	AnalysisCount int
}

// OverallBandStats is the windowed mean overall band with its sample count.
type OverallBandStats struct {
	MeanBand float64
	Count    int64
}
