package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/speechband/band-server/internal/service"
)

// MockAnalysisService is a mock implementation of the AnalysisService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockAnalysisService struct {
	SubmitAnalysisFunc         func(ctx context.Context, req service.SubmitAnalysisRequest) (service.AnalysisResult, error)
	GetAnalysisFunc            func(ctx context.Context, id int64) (service.AnalysisResult, error)
	ListAnalysesFunc           func(ctx context.Context, limit int) ([]service.AnalysisSummary, error)
	GetCriterionAggregatesFunc func(ctx context.Context, start, end time.Time) ([]service.AggregatedCriterionBands, error)
	GetOverallBandAverageFunc  func(ctx context.Context, start, end time.Time) (service.OverallBandAverage, error)
}

// SubmitAnalysis implements the AnalysisService interface
func (m *MockAnalysisService) SubmitAnalysis(ctx context.Context, req service.SubmitAnalysisRequest) (service.AnalysisResult, error) {
	if m.SubmitAnalysisFunc != nil {
		return m.SubmitAnalysisFunc(ctx, req)
	}
	return service.AnalysisResult{}, errors.New("SubmitAnalysisFunc not implemented")
}

// GetAnalysis implements the AnalysisService interface
func (m *MockAnalysisService) GetAnalysis(ctx context.Context, id int64) (service.AnalysisResult, error) {
	if m.GetAnalysisFunc != nil {
		return m.GetAnalysisFunc(ctx, id)
	}
	return service.AnalysisResult{}, errors.New("GetAnalysisFunc not implemented")
}

// ListAnalyses implements the AnalysisService interface
func (m *MockAnalysisService) ListAnalyses(ctx context.Context, limit int) ([]service.AnalysisSummary, error) {
	if m.ListAnalysesFunc != nil {
		return m.ListAnalysesFunc(ctx, limit)
	}
	return nil, errors.New("ListAnalysesFunc not implemented")
}

// GetCriterionAggregates implements the AnalysisService interface
func (m *MockAnalysisService) GetCriterionAggregates(ctx context.Context, start, end time.Time) ([]service.AggregatedCriterionBands, error) {
	if m.GetCriterionAggregatesFunc != nil {
		return m.GetCriterionAggregatesFunc(ctx, start, end)
	}
	return nil, errors.New("GetCriterionAggregatesFunc not implemented")
}

// GetOverallBandAverage implements the AnalysisService interface
func (m *MockAnalysisService) GetOverallBandAverage(ctx context.Context, start, end time.Time) (service.OverallBandAverage, error) {
	if m.GetOverallBandAverageFunc != nil {
		return m.GetOverallBandAverageFunc(ctx, start, end)
	}
	return service.OverallBandAverage{}, errors.New("GetOverallBandAverageFunc not implemented")
}
