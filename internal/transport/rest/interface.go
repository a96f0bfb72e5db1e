package rest

import (
	"context"
	"time"

	"github.com/speechband/band-server/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// AnalysisService is the scoring surface the handlers depend on.
type AnalysisService interface {
	SubmitAnalysis(ctx context.Context, req service.SubmitAnalysisRequest) (service.AnalysisResult, error)
	GetAnalysis(ctx context.Context, id int64) (service.AnalysisResult, error)
	ListAnalyses(ctx context.Context, limit int) ([]service.AnalysisSummary, error)
	GetCriterionAggregates(ctx context.Context, start, end time.Time) ([]service.AggregatedCriterionBands, error)
	GetOverallBandAverage(ctx context.Context, start, end time.Time) (service.OverallBandAverage, error)
}
