package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/speechband/band-server/internal/scoring"
	"github.com/speechband/band-server/internal/service"
)

const (
	defaultCacheDuration  = 10 * time.Minute
	defaultRequestTimeout = 10 * time.Second
	dateLayout            = "2006-01-02"
)

type cacheKeyType string

const (
	cacheKeyAnalysis           cacheKeyType = "rest:analysis"
	cacheKeyCriterionBands     cacheKeyType = "rest:criterion_bands"
	cacheKeyOverallBandAverage cacheKeyType = "rest:overall_band_average"
)

// Handlers serves the scoring API over HTTP.
type Handlers struct {
	analyses AnalysisService
	cache    Cacher
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
}

// NewHandlers initializes the REST handlers.
func NewHandlers(analyses AnalysisService, cache Cacher, logger *zap.Logger, ttl time.Duration) *Handlers {
	if analyses == nil {
		panic("nil AnalysisService provided to NewHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &Handlers{
		analyses: analyses,
		cache:    cache,
		logger:   logger.Named("rest-handler"),
		cacheTTL: ttl,
	}
}

type submitRequest struct {
	Metrics    scoring.SpeechMetrics `json:"metrics"`
	Findings   *scoring.LLMFindings  `json:"llm_findings,omitempty"`
	Transcript string                `json:"transcript"`
}

type analysisResponse struct {
	ID        int64          `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Report    scoring.Report `json:"report"`
}

type analysisSummary struct {
	ID               int64     `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	OverallBand      float64   `json:"overall_band"`
	Confidence       float64   `json:"confidence"`
	AudioDurationSec float64   `json:"audio_duration_sec"`
}

type listResponse struct {
	Analyses []analysisSummary `json:"analyses"`
}

type periodBand struct {
	Period   string  `json:"period"`
	MeanBand float64 `json:"mean_band"`
}

type criterionBands struct {
	Criterion       string       `json:"criterion"`
	TotalAnalyses   int          `json:"total_analyses"`
	OverallMeanBand float64      `json:"overall_mean_band"`
	PeriodBands     []periodBand `json:"period_bands"`
}

type criterionBandsResponse struct {
	Criteria []criterionBands `json:"criteria"`
}

type overallBandResponse struct {
	MeanBand float64 `json:"mean_band"`
	Count    int64   `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handlers) parseWindow(r *http.Request) (start, end time.Time, err error) {
	q := r.URL.Query()
	startStr := q.Get("start")
	endStr := q.Get("end")

	if startStr == "" || endStr == "" {
		err = errors.New("start and end dates are required")
		return
	}

	start, err = time.Parse(dateLayout, startStr)
	if err != nil {
		err = fmt.Errorf("invalid start date %q", startStr)
		return
	}
	end, err = time.Parse(dateLayout, endStr)
	if err != nil {
		err = fmt.Errorf("invalid end date %q", endStr)
		return
	}

	if end.Before(start) {
		err = errors.New("end date must be after start date")
		return
	}
	// include the whole end day
	end = end.Add(24*time.Hour - time.Second)
	return
}

func normalizeKey(prefix cacheKeyType, start, end time.Time) string {
	s := start.UTC().Truncate(24 * time.Hour).Format(dateLayout)
	e := end.UTC().Truncate(24 * time.Hour).Format(dateLayout)
	return fmt.Sprintf("%s:%s:%s", prefix, s, e)
}

func (h *Handlers) handleError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch ctx.Err() {
	case context.Canceled:
		h.logger.Warn("request canceled", zap.String("op", op))
		writeError(w, http.StatusGatewayTimeout, "request canceled")
		return
	case context.DeadlineExceeded:
		h.logger.Warn("request timeout", zap.String("op", op))
		writeError(w, http.StatusGatewayTimeout, "request timed out")
		return
	}

	switch {
	case errors.Is(err, service.ErrAnalysisNotFound):
		h.logger.Info("analysis not found", zap.String("op", op))
		writeError(w, http.StatusNotFound, "analysis not found")
	case errors.Is(err, service.ErrNoAnalyses):
		h.logger.Info("no analyses found", zap.String("op", op))
		writeError(w, http.StatusNotFound, "no analyses found for the given period")
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "database error")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

// SubmitAnalysis handles POST /v1/analyses
func (h *Handlers) SubmitAnalysis(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Metrics.AudioDurationSec <= 0 {
		writeError(w, http.StatusBadRequest, "metrics.audio_duration_sec must be positive")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	result, err := h.analyses.SubmitAnalysis(ctx, service.SubmitAnalysisRequest{
		Metrics:    req.Metrics,
		Findings:   req.Findings,
		Transcript: req.Transcript,
	})
	if err != nil {
		h.handleError(ctx, w, "SubmitAnalysis", err)
		return
	}

	writeJSON(w, http.StatusCreated, analysisResponse{
		ID:        result.ID,
		CreatedAt: result.CreatedAt,
		Report:    result.Report,
	})
}

// GetAnalysis handles GET /v1/analyses/{id}
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid analysis id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	cacheKey := fmt.Sprintf("%s:%d", cacheKeyAnalysis, id)

	result, err := FindAndCache(ctx, h.cache, &h.sfGroup, cacheKey, h.cacheTTL, h.logger, func(fetchCtx context.Context) (service.AnalysisResult, error) {
		return h.analyses.GetAnalysis(fetchCtx, id)
	})
	if err != nil {
		h.handleError(ctx, w, "GetAnalysis", err)
		return
	}

	writeJSON(w, http.StatusOK, analysisResponse{
		ID:        result.ID,
		CreatedAt: result.CreatedAt,
		Report:    result.Report,
	})
}

// ListAnalyses handles GET /v1/analyses
func (h *Handlers) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	rows, err := h.analyses.ListAnalyses(ctx, limit)
	if err != nil {
		h.handleError(ctx, w, "ListAnalyses", err)
		return
	}

	out := listResponse{Analyses: make([]analysisSummary, 0, len(rows))}
	for _, s := range rows {
		out.Analyses = append(out.Analyses, analysisSummary{
			ID:               s.ID,
			CreatedAt:        s.CreatedAt,
			OverallBand:      s.OverallBand,
			Confidence:       s.Confidence,
			AudioDurationSec: s.AudioDurationSec,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCriterionBands handles GET /v1/scores/criteria
func (h *Handlers) GetCriterionBands(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	cacheKey := normalizeKey(cacheKeyCriterionBands, start, end)

	results, err := FindAndCache(ctx, h.cache, &h.sfGroup, cacheKey, h.cacheTTL, h.logger, func(fetchCtx context.Context) ([]service.AggregatedCriterionBands, error) {
		return h.analyses.GetCriterionAggregates(fetchCtx, start, end)
	})
	if err != nil {
		h.handleError(ctx, w, "GetCriterionBands", err)
		return
	}

	out := criterionBandsResponse{Criteria: make([]criterionBands, 0, len(results))}
	for _, c := range results {
		bands := make([]periodBand, 0, len(c.PeriodBands))
		for _, p := range c.PeriodBands {
			bands = append(bands, periodBand{Period: p.Period, MeanBand: p.MeanBand})
		}
		out.Criteria = append(out.Criteria, criterionBands{
			Criterion:       c.Criterion,
			TotalAnalyses:   c.TotalAnalyses,
			OverallMeanBand: c.OverallMeanBand,
			PeriodBands:     bands,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetOverallBandAverage handles GET /v1/scores/overall
func (h *Handlers) GetOverallBandAverage(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	cacheKey := normalizeKey(cacheKeyOverallBandAverage, start, end)

	avg, err := FindAndCache(ctx, h.cache, &h.sfGroup, cacheKey, h.cacheTTL, h.logger, func(fetchCtx context.Context) (service.OverallBandAverage, error) {
		return h.analyses.GetOverallBandAverage(fetchCtx, start, end)
	})
	if err != nil {
		h.handleError(ctx, w, "GetOverallBandAverage", err)
		return
	}

	writeJSON(w, http.StatusOK, overallBandResponse{MeanBand: avg.MeanBand, Count: avg.Count})
}
