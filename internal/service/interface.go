package service

import (
	"context"
	"time"

	"github.com/speechband/band-server/internal/repository/models"
)

// AnalysisRepository is the persistence contract the service depends on.
type AnalysisRepository interface {
	InsertAnalysis(ctx context.Context, rec models.AnalysisRecord, bands []models.CriterionBandRow) (int64, error)
	GetAnalysisByID(ctx context.Context, id int64) (models.AnalysisRecord, bool, error)
	ListAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error)
	GetCriterionBandsInPeriod(ctx context.Context, start, end time.Time, isWeekly bool) ([]models.AggregatedCriterionData, error)
	GetOverallBandStats(ctx context.Context, start, end time.Time) (models.OverallBandStats, error)
}
