package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/speechband/band-server/internal/repository/models"
	"github.com/speechband/band-server/internal/scoring"
	"github.com/speechband/band-server/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strongMetrics() scoring.SpeechMetrics {
	return scoring.SpeechMetrics{
		WPM:                  155,
		LongPausesPerMin:     0.4,
		PauseVariability:     0.30,
		RepetitionRatio:      0.02,
		MeanWordConfidence:   0.90,
		LowConfidenceRatio:   0.10,
		VocabRichness:        0.63,
		LexicalDensity:       0.53,
		MeanUtteranceLength:  13,
		SpeechRateVariability: 0.30,
		AudioDurationSec:     320,
		UniqueWordCount:      240,
	}
}

// TestNewAnalysisService tests the constructor
func TestNewAnalysisService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{}
		logger := zap.NewNop()

		svc := NewAnalysisService(mockRepo, logger)

		assert.NotNil(t, svc)
		assert.Equal(t, mockRepo, svc.storage)
		assert.Equal(t, logger, svc.logger)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		logger := zap.NewNop()

		assert.Panics(t, func() {
			NewAnalysisService(nil, logger)
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{}

		svc := NewAnalysisService(mockRepo, nil)

		assert.NotNil(t, svc)
		assert.NotNil(t, svc.logger)
	})
}

// TestSubmitAnalysis tests scoring plus persistence
func TestSubmitAnalysis(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("successful submission", func(t *testing.T) {
		var inserted models.AnalysisRecord
		var insertedBands []models.CriterionBandRow
		mockRepo := &mocks.MockAnalysisRepository{
			InsertAnalysisFunc: func(ctx context.Context, rec models.AnalysisRecord, bands []models.CriterionBandRow) (int64, error) {
				inserted = rec
				insertedBands = bands
				return 42, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		res, err := svc.SubmitAnalysis(ctx, SubmitAnalysisRequest{
			Metrics:    strongMetrics(),
			Transcript: "well I would say that living in a large city has both advantages and drawbacks",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(42), res.ID)
		assert.False(t, res.CreatedAt.IsZero())
		assert.GreaterOrEqual(t, float64(res.Report.OverallBand), 5.0)

		assert.Equal(t, float64(res.Report.OverallBand), inserted.OverallBand)
		assert.Equal(t, 14, inserted.TranscriptWords)
		assert.NotEmpty(t, inserted.ReportJSON)
		require.Len(t, insertedBands, 4)
		for i, cr := range scoring.Criteria {
			assert.Equal(t, string(cr), insertedBands[i].Criterion)
			assert.Equal(t, float64(res.Report.CriterionScores.ByCriterion(cr)), insertedBands[i].Band)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			InsertAnalysisFunc: func(ctx context.Context, rec models.AnalysisRecord, bands []models.CriterionBandRow) (int64, error) {
				return 0, errors.New("disk full")
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		_, err := svc.SubmitAnalysis(ctx, SubmitAnalysisRequest{Metrics: strongMetrics()})

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Contains(t, err.Error(), "disk full")
	})
}

// TestGetAnalysis tests fetching a stored analysis
func TestGetAnalysis(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		created := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
		mockRepo := &mocks.MockAnalysisRepository{
			GetAnalysisByIDFunc: func(ctx context.Context, id int64) (models.AnalysisRecord, bool, error) {
				assert.Equal(t, int64(7), id)
				return models.AnalysisRecord{
					ID:          7,
					CreatedAt:   created,
					OverallBand: 7.5,
					ReportJSON:  []byte(`{"overall_band":7.5}`),
				}, true, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		res, err := svc.GetAnalysis(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(7), res.ID)
		assert.Equal(t, created, res.CreatedAt)
		assert.Equal(t, scoring.Band(7.5), res.Report.OverallBand)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			GetAnalysisByIDFunc: func(ctx context.Context, id int64) (models.AnalysisRecord, bool, error) {
				return models.AnalysisRecord{}, false, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		_, err := svc.GetAnalysis(ctx, 999)

		assert.ErrorIs(t, err, ErrAnalysisNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			GetAnalysisByIDFunc: func(ctx context.Context, id int64) (models.AnalysisRecord, bool, error) {
				return models.AnalysisRecord{}, false, errors.New("database connection failed")
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		_, err := svc.GetAnalysis(ctx, 7)

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("corrupt stored report", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			GetAnalysisByIDFunc: func(ctx context.Context, id int64) (models.AnalysisRecord, bool, error) {
				return models.AnalysisRecord{ID: 7, ReportJSON: []byte("{not json")}, true, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		_, err := svc.GetAnalysis(ctx, 7)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrAnalysisNotFound)
	})
}

// TestListAnalyses tests the listing path and limit clamping
func TestListAnalyses(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("successful listing", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			ListAnalysesFunc: func(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
				assert.Equal(t, 5, limit)
				return []models.AnalysisRecord{
					{ID: 2, OverallBand: 7.0, Confidence: 0.91, AudioDurationSec: 310},
					{ID: 1, OverallBand: 6.5, Confidence: 0.78, AudioDurationSec: 150},
				}, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		out, err := svc.ListAnalyses(ctx, 5)

		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, int64(2), out[0].ID)
		assert.Equal(t, 7.0, out[0].OverallBand)
		assert.Equal(t, 0.78, out[1].Confidence)
	})

	t.Run("zero limit uses default", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			ListAnalysesFunc: func(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
				assert.Equal(t, defaultListLimit, limit)
				return []models.AnalysisRecord{{ID: 1}}, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		_, err := svc.ListAnalyses(ctx, 0)
		assert.NoError(t, err)
	})

	t.Run("oversized limit is clamped", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			ListAnalysesFunc: func(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
				assert.Equal(t, maxListLimit, limit)
				return []models.AnalysisRecord{{ID: 1}}, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		_, err := svc.ListAnalyses(ctx, 5000)
		assert.NoError(t, err)
	})

	t.Run("empty result", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			ListAnalysesFunc: func(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
				return nil, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		_, err := svc.ListAnalyses(ctx, 10)
		assert.ErrorIs(t, err, ErrNoAnalyses)
	})
}

// TestGetCriterionAggregates tests criterion band aggregation
func TestGetCriterionAggregates(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("successful daily aggregation", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			GetCriterionBandsInPeriodFunc: func(ctx context.Context, s, e time.Time, isWeekly bool) ([]models.AggregatedCriterionData, error) {
				assert.Equal(t, start, s)
				assert.Equal(t, end, e)
				assert.False(t, isWeekly)

				return []models.AggregatedCriterionData{
					{Criterion: "fluency_coherence", Period: "2026-01-01", MeanBand: 7.0, AnalysisCount: 2},
					{Criterion: "fluency_coherence", Period: "2026-01-02", MeanBand: 6.0, AnalysisCount: 1},
					{Criterion: "pronunciation", Period: "2026-01-01", MeanBand: 6.5, AnalysisCount: 3},
				}, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		results, err := svc.GetCriterionAggregates(ctx, start, end)

		require.NoError(t, err)
		require.Len(t, results, 2)

		// sorted by criterion name
		fc := results[0]
		assert.Equal(t, "fluency_coherence", fc.Criterion)
		assert.Equal(t, 3, fc.TotalAnalyses)
		require.Len(t, fc.PeriodBands, 2)
		assert.Equal(t, "2026-01-01", fc.PeriodBands[0].Period)
		// weighted mean: (7.0*2 + 6.0*1) / 3
		assert.InDelta(t, 6.6667, fc.OverallMeanBand, 0.001)

		pr := results[1]
		assert.Equal(t, "pronunciation", pr.Criterion)
		assert.Equal(t, 6.5, pr.OverallMeanBand)
	})

	t.Run("weekly flag for wide window", func(t *testing.T) {
		wideEnd := start.AddDate(0, 2, 0)
		mockRepo := &mocks.MockAnalysisRepository{
			GetCriterionBandsInPeriodFunc: func(ctx context.Context, s, e time.Time, isWeekly bool) ([]models.AggregatedCriterionData, error) {
				assert.True(t, isWeekly)
				return []models.AggregatedCriterionData{
					{Criterion: "lexical_resource", Period: "2026-W02", MeanBand: 6.0, AnalysisCount: 4},
				}, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		results, err := svc.GetCriterionAggregates(ctx, start, wideEnd)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "2026-W02", results[0].PeriodBands[0].Period)
	})

	t.Run("empty window", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			GetCriterionBandsInPeriodFunc: func(ctx context.Context, s, e time.Time, isWeekly bool) ([]models.AggregatedCriterionData, error) {
				return nil, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		_, err := svc.GetCriterionAggregates(ctx, start, end)
		assert.ErrorIs(t, err, ErrNoAnalyses)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			GetCriterionBandsInPeriodFunc: func(ctx context.Context, s, e time.Time, isWeekly bool) ([]models.AggregatedCriterionData, error) {
				return nil, errors.New("query timeout")
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		_, err := svc.GetCriterionAggregates(ctx, start, end)
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

// TestGetOverallBandAverage tests the windowed overall band mean
func TestGetOverallBandAverage(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("successful calculation", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			GetOverallBandStatsFunc: func(ctx context.Context, s, e time.Time) (models.OverallBandStats, error) {
				assert.Equal(t, start, s)
				assert.Equal(t, end, e)
				return models.OverallBandStats{MeanBand: 6.75, Count: 12}, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		avg, err := svc.GetOverallBandAverage(ctx, start, end)

		require.NoError(t, err)
		assert.Equal(t, 6.75, avg.MeanBand)
		assert.Equal(t, int64(12), avg.Count)
	})

	t.Run("no analyses in window", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			GetOverallBandStatsFunc: func(ctx context.Context, s, e time.Time) (models.OverallBandStats, error) {
				return models.OverallBandStats{}, nil
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		_, err := svc.GetOverallBandAverage(ctx, start, end)
		assert.ErrorIs(t, err, ErrNoAnalyses)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockAnalysisRepository{
			GetOverallBandStatsFunc: func(ctx context.Context, s, e time.Time) (models.OverallBandStats, error) {
				return models.OverallBandStats{}, errors.New("database connection failed")
			},
		}

		svc := NewAnalysisService(mockRepo, logger)
		_, err := svc.GetOverallBandAverage(ctx, start, end)

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Contains(t, err.Error(), "database connection failed")
	})
}
