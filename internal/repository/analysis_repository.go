package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/speechband/band-server/internal/repository/models"
)

// AnalysisRepository persists scored analyses and serves band aggregates
// computed in SQL.
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// InitSchema creates the tables if they do not exist yet.
func (r *AnalysisRepository) InitSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		audio_duration_sec REAL NOT NULL,
		transcript_words INTEGER NOT NULL,
		overall_band REAL NOT NULL,
		confidence REAL NOT NULL,
		report_json TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS criterion_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id INTEGER NOT NULL,
		criterion TEXT NOT NULL,
		band REAL NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (analysis_id) REFERENCES analyses(id)
	);
	CREATE INDEX IF NOT EXISTS idx_criterion_scores_created
		ON criterion_scores(created_at, criterion);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// InsertAnalysis stores one analysis and its per-criterion bands in a single
// transaction and returns the new analysis id.
func (r *AnalysisRepository) InsertAnalysis(ctx context.Context, rec models.AnalysisRecord, bands []models.CriterionBandRow) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin InsertAnalysis: %w", err)
	}
	defer tx.Rollback()

	createdAt := rec.CreatedAt.UTC().Format(time.RFC3339)

	res, err := tx.ExecContext(ctx, `
		INSERT INTO analyses (created_at, audio_duration_sec, transcript_words, overall_band, confidence, report_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		createdAt, rec.AudioDurationSec, rec.TranscriptWords, rec.OverallBand, rec.Confidence, string(rec.ReportJSON))
	if err != nil {
		return 0, fmt.Errorf("insert analysis: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert analysis id: %w", err)
	}

	for _, b := range bands {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO criterion_scores (analysis_id, criterion, band, created_at)
			VALUES (?, ?, ?, ?)`,
			id, b.Criterion, b.Band, createdAt)
		if err != nil {
			return 0, fmt.Errorf("insert criterion score %s: %w", b.Criterion, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit InsertAnalysis: %w", err)
	}
	return id, nil
}

// GetAnalysisByID fetches one analysis row. found is false when no row
// matches; that is not an error.
func (r *AnalysisRepository) GetAnalysisByID(ctx context.Context, id int64) (models.AnalysisRecord, bool, error) {
	const query = `
		SELECT id, created_at, audio_duration_sec, transcript_words, overall_band, confidence, report_json
		FROM analyses
		WHERE id = ?`

	var rec models.AnalysisRecord
	var createdAt string
	var reportJSON string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &createdAt, &rec.AudioDurationSec, &rec.TranscriptWords,
		&rec.OverallBand, &rec.Confidence, &reportJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AnalysisRecord{}, false, nil
		}
		return models.AnalysisRecord{}, false, fmt.Errorf("query GetAnalysisByID: %w", err)
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.AnalysisRecord{}, false, fmt.Errorf("parse created_at for analysis %d: %w", id, err)
	}
	rec.ReportJSON = []byte(reportJSON)
	return rec, true, nil
}

// ListAnalyses returns the most recent analyses, newest first, without the
// report payload.
func (r *AnalysisRepository) ListAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	const query = `
		SELECT id, created_at, audio_duration_sec, transcript_words, overall_band, confidence
		FROM analyses
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query ListAnalyses: %w", err)
	}
	defer rows.Close()

	var results []models.AnalysisRecord
	for rows.Next() {
		var rec models.AnalysisRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &createdAt, &rec.AudioDurationSec, &rec.TranscriptWords, &rec.OverallBand, &rec.Confidence); err != nil {
			return nil, fmt.Errorf("scan ListAnalyses row: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for analysis %d: %w", rec.ID, err)
		}
		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListAnalyses: %w", err)
	}
	return results, nil
}

// GetCriterionBandsInPeriod aggregates criterion bands by daily or weekly
// period with SQL-computed means.
func (r *AnalysisRepository) GetCriterionBandsInPeriod(ctx context.Context, start, end time.Time, isWeekly bool) ([]models.AggregatedCriterionData, error) {
	periodFormat := "%Y-%m-%d"
	if isWeekly {
		periodFormat = "%Y-W%W"
	}

	const query = `
		SELECT
			criterion,
			strftime(?, created_at) AS period,
			AVG(band) AS mean_band,
			COUNT(id) AS analysis_count
		FROM criterion_scores
		WHERE created_at >= ? AND created_at <= ?
		GROUP BY criterion, period
		ORDER BY criterion, period
	`

	rows, err := r.db.QueryContext(ctx, query, periodFormat,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("query GetCriterionBandsInPeriod: %w", err)
	}
	defer rows.Close()

	var results []models.AggregatedCriterionData
	for rows.Next() {
		var d models.AggregatedCriterionData
		if err := rows.Scan(&d.Criterion, &d.Period, &d.MeanBand, &d.AnalysisCount); err != nil {
			return nil, fmt.Errorf("scan GetCriterionBandsInPeriod row: %w", err)
		}
		results = append(results, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetCriterionBandsInPeriod: %w", err)
	}
	return results, nil
}

// GetOverallBandStats computes the windowed mean overall band in SQL.
func (r *AnalysisRepository) GetOverallBandStats(ctx context.Context, start, end time.Time) (models.OverallBandStats, error) {
	const query = `
		SELECT
			COALESCE(AVG(overall_band), 0) AS mean_band,
			COUNT(id) AS count
		FROM analyses
		WHERE created_at >= ? AND created_at <= ?`

	var mean sql.NullFloat64
	var count sql.NullInt64

	err := r.db.QueryRowContext(ctx, query,
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339)).Scan(&mean, &count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OverallBandStats{}, nil
		}
		return models.OverallBandStats{}, fmt.Errorf("query GetOverallBandStats: %w", err)
	}

	stats := models.OverallBandStats{}
	if count.Valid {
		stats.Count = count.Int64
	}
	if mean.Valid {
		stats.MeanBand = mean.Float64
	}
	return stats, nil
}
