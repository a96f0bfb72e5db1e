package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/speechband/band-server/internal/repository/models"
)

// MockAnalysisRepository is a mock implementation of the AnalysisRepository
// interface for testing the service layer.
type MockAnalysisRepository struct {
	InsertAnalysisFunc            func(ctx context.Context, rec models.AnalysisRecord, bands []models.CriterionBandRow) (int64, error)
	GetAnalysisByIDFunc           func(ctx context.Context, id int64) (models.AnalysisRecord, bool, error)
	ListAnalysesFunc              func(ctx context.Context, limit int) ([]models.AnalysisRecord, error)
	GetCriterionBandsInPeriodFunc func(ctx context.Context, start, end time.Time, isWeekly bool) ([]models.AggregatedCriterionData, error)
	GetOverallBandStatsFunc       func(ctx context.Context, start, end time.Time) (models.OverallBandStats, error)
}

// InsertAnalysis implements the AnalysisRepository interface
func (m *MockAnalysisRepository) InsertAnalysis(ctx context.Context, rec models.AnalysisRecord, bands []models.CriterionBandRow) (int64, error) {
	if m.InsertAnalysisFunc != nil {
		return m.InsertAnalysisFunc(ctx, rec, bands)
	}
	return 0, errors.New("InsertAnalysisFunc not implemented")
}

// GetAnalysisByID implements the AnalysisRepository interface
func (m *MockAnalysisRepository) GetAnalysisByID(ctx context.Context, id int64) (models.AnalysisRecord, bool, error) {
	if m.GetAnalysisByIDFunc != nil {
		return m.GetAnalysisByIDFunc(ctx, id)
	}
	return models.AnalysisRecord{}, false, errors.New("GetAnalysisByIDFunc not implemented")
}

// ListAnalyses implements the AnalysisRepository interface
func (m *MockAnalysisRepository) ListAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	if m.ListAnalysesFunc != nil {
		return m.ListAnalysesFunc(ctx, limit)
	}
	return nil, errors.New("ListAnalysesFunc not implemented")
}

// GetCriterionBandsInPeriod implements the AnalysisRepository interface
func (m *MockAnalysisRepository) GetCriterionBandsInPeriod(ctx context.Context, start, end time.Time, isWeekly bool) ([]models.AggregatedCriterionData, error) {
	if m.GetCriterionBandsInPeriodFunc != nil {
		return m.GetCriterionBandsInPeriodFunc(ctx, start, end, isWeekly)
	}
	return nil, errors.New("GetCriterionBandsInPeriodFunc not implemented")
}

// GetOverallBandStats implements the AnalysisRepository interface
func (m *MockAnalysisRepository) GetOverallBandStats(ctx context.Context, start, end time.Time) (models.OverallBandStats, error) {
	if m.GetOverallBandStatsFunc != nil {
		return m.GetOverallBandStatsFunc(ctx, start, end)
	}
	return models.OverallBandStats{}, errors.New("GetOverallBandStatsFunc not implemented")
}
