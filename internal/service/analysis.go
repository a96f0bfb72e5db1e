package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/speechband/band-server/internal/repository/models"
	"github.com/speechband/band-server/internal/scoring"
)

const (
	dbTimeout        = 1 * time.Second
	defaultListLimit = 20
	maxListLimit     = 100
)

var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrNoAnalyses       = errors.New("no analyses found")
	ErrStorageFailure   = errors.New("storage failure")
)

// AnalysisService scores speech samples and owns their persistence. The
// scoring itself is pure; everything stateful lives behind the repository.
type AnalysisService struct {
	storage AnalysisRepository
	logger  *zap.Logger
}

// NewAnalysisService creates a new AnalysisService instance.
func NewAnalysisService(storage AnalysisRepository, logger *zap.Logger) *AnalysisService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &AnalysisService{
		storage: storage,
		logger:  logger,
	}
}

func isAtLeastOneMonth(start, end time.Time) bool {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	oneMonthLater := s.AddDate(0, 1, 0)
	return !oneMonthLater.After(e)
}

// IsWeeklyAggregation reports whether a reporting window is wide enough to
// bucket per week instead of per day.
func IsWeeklyAggregation(start, end time.Time) bool {
	if isAtLeastOneMonth(start, end) {
		return true
	}
	if end.Sub(start) >= 28*24*time.Hour {
		return true
	}
	return false
}

// SubmitAnalysis scores one sample and persists the result.
func (s *AnalysisService) SubmitAnalysis(ctx context.Context, req SubmitAnalysisRequest) (AnalysisResult, error) {
	report := scoring.Score(req.Metrics, req.Findings, req.Transcript)

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("marshal report: %w", err)
	}

	createdAt := time.Now().UTC()
	rec := models.AnalysisRecord{
		CreatedAt:        createdAt,
		AudioDurationSec: req.Metrics.AudioDurationSec,
		TranscriptWords:  len(strings.Fields(req.Transcript)),
		OverallBand:      float64(report.OverallBand),
		Confidence:       report.Confidence.OverallConfidence,
		ReportJSON:       reportJSON,
	}
	bands := make([]models.CriterionBandRow, 0, len(scoring.Criteria))
	for _, cr := range scoring.Criteria {
		bands = append(bands, models.CriterionBandRow{
			Criterion: string(cr),
			Band:      float64(report.CriterionScores.ByCriterion(cr)),
		})
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	id, err := s.storage.InsertAnalysis(dbCtx, rec, bands)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("analysis scored",
		zap.Int64("analysis_id", id),
		zap.Float64("overall_band", float64(report.OverallBand)),
		zap.Float64("confidence", report.Confidence.OverallConfidence),
		zap.String("confidence_category", string(report.Confidence.Category)),
		zap.Bool("llm_findings", req.Findings != nil))

	return AnalysisResult{ID: id, CreatedAt: createdAt, Report: report}, nil
}

// GetAnalysis fetches one stored analysis with its full report.
func (s *AnalysisService) GetAnalysis(ctx context.Context, id int64) (AnalysisResult, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rec, found, err := s.storage.GetAnalysisByID(dbCtx, id)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if !found {
		return AnalysisResult{}, ErrAnalysisNotFound
	}

	var report scoring.Report
	if err := json.Unmarshal(rec.ReportJSON, &report); err != nil {
		return AnalysisResult{}, fmt.Errorf("unmarshal stored report %d: %w", id, err)
	}

	return AnalysisResult{ID: rec.ID, CreatedAt: rec.CreatedAt, Report: report}, nil
}

// ListAnalyses returns the most recent analyses, newest first.
func (s *AnalysisService) ListAnalyses(ctx context.Context, limit int) ([]AnalysisSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.storage.ListAnalyses(dbCtx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoAnalyses
	}

	out := make([]AnalysisSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, AnalysisSummary{
			ID:               r.ID,
			CreatedAt:        r.CreatedAt,
			OverallBand:      r.OverallBand,
			Confidence:       r.Confidence,
			AudioDurationSec: r.AudioDurationSec,
		})
	}
	return out, nil
}

// GetCriterionAggregates returns per-criterion (daily or weekly) mean bands
// for the requested window.
func (s *AnalysisService) GetCriterionAggregates(ctx context.Context, start, end time.Time) ([]AggregatedCriterionBands, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	weekly := IsWeeklyAggregation(start, end)
	rows, err := s.storage.GetCriterionBandsInPeriod(dbCtx, start, end, weekly)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoAnalyses
	}

	resultsMap := make(map[string]*AggregatedCriterionBands)
	totals := make(map[string]struct {
		weighted float64
		count    int
	})

	for _, r := range rows {
		c := r.Criterion
		if _, ok := resultsMap[c]; !ok {
			resultsMap[c] = &AggregatedCriterionBands{
				Criterion:   c,
				PeriodBands: make([]PeriodBand, 0),
			}
		}

		resultsMap[c].PeriodBands = append(resultsMap[c].PeriodBands, PeriodBand{
			Period:   r.Period,
			MeanBand: r.MeanBand,
		})
		resultsMap[c].TotalAnalyses += r.AnalysisCount

		t := totals[c]
		t.weighted += r.MeanBand * float64(r.AnalysisCount)
		t.count += r.AnalysisCount
		totals[c] = t
	}

	results := make([]AggregatedCriterionBands, 0, len(resultsMap))
	for cr, v := range resultsMap {
		sort.Slice(v.PeriodBands, func(i, j int) bool {
			return v.PeriodBands[i].Period < v.PeriodBands[j].Period
		})

		t := totals[cr]
		if t.count > 0 {
			v.OverallMeanBand = t.weighted / float64(t.count)
		}
		results = append(results, *v)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Criterion < results[j].Criterion
	})
	return results, nil
}

// GetOverallBandAverage returns the mean overall band for the window.
func (s *AnalysisService) GetOverallBandAverage(ctx context.Context, start, end time.Time) (OverallBandAverage, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	stats, err := s.storage.GetOverallBandStats(dbCtx, start, end)
	if err != nil {
		return OverallBandAverage{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if stats.Count == 0 {
		return OverallBandAverage{}, ErrNoAnalyses
	}

	s.logger.Info("fetched overall band average",
		zap.Float64("mean_band", stats.MeanBand),
		zap.Int64("count", stats.Count),
		zap.Time("start", start),
		zap.Time("end", end))

	return OverallBandAverage{MeanBand: stats.MeanBand, Count: stats.Count}, nil
}
