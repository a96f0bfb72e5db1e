package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/speechband/band-server/internal/scoring"
	"github.com/speechband/band-server/internal/service"
	"github.com/speechband/band-server/internal/transport/rest/mocks"
)

func sampleResult() service.AnalysisResult {
	m := scoring.SpeechMetrics{
		WPM:                155,
		LongPausesPerMin:   0.4,
		PauseVariability:   0.30,
		RepetitionRatio:    0.02,
		MeanWordConfidence: 0.90,
		LowConfidenceRatio: 0.10,
		VocabRichness:      0.63,
		LexicalDensity:     0.53,
		AudioDurationSec:   320,
		UniqueWordCount:    240,
	}
	return service.AnalysisResult{
		ID:        1,
		CreatedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		Report:    scoring.Score(m, nil, ""),
	}
}

// TestNewHandlers tests the constructor
func TestNewHandlers(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockSvc := &mocks.MockAnalysisService{}
		mockCache := &mocks.MockCacher{}
		ttl := 5 * time.Minute

		h := NewHandlers(mockSvc, mockCache, zap.NewNop(), ttl)

		assert.NotNil(t, h)
		assert.Equal(t, mockSvc, h.analyses)
		assert.Equal(t, mockCache, h.cache)
		assert.Equal(t, ttl, h.cacheTTL)
		assert.NotNil(t, h.logger)
	})

	t.Run("nil service panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewHandlers(nil, &mocks.MockCacher{}, zap.NewNop(), time.Minute)
		})
	})

	t.Run("zero TTL uses default", func(t *testing.T) {
		h := NewHandlers(&mocks.MockAnalysisService{}, &mocks.MockCacher{}, zap.NewNop(), 0)
		assert.Equal(t, defaultCacheDuration, h.cacheTTL)
	})
}

func serveRouter(h *Handlers, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)
	return rec
}

// TestSubmitAnalysisHandler tests POST /v1/analyses
func TestSubmitAnalysisHandler(t *testing.T) {
	t.Run("successful submission", func(t *testing.T) {
		mockSvc := &mocks.MockAnalysisService{
			SubmitAnalysisFunc: func(ctx context.Context, req service.SubmitAnalysisRequest) (service.AnalysisResult, error) {
				assert.Equal(t, 155.0, req.Metrics.WPM)
				assert.Nil(t, req.Findings)
				return sampleResult(), nil
			},
		}
		h := NewHandlers(mockSvc, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		body, _ := json.Marshal(map[string]any{
			"metrics": map[string]any{
				"wpm":                155,
				"audio_duration_sec": 320,
			},
			"transcript": "some answer",
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/analyses", bytes.NewReader(body))
		rec := serveRouter(h, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp analysisResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.GreaterOrEqual(t, float64(resp.Report.OverallBand), 5.0)
	})

	t.Run("invalid body", func(t *testing.T) {
		h := NewHandlers(&mocks.MockAnalysisService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodPost, "/v1/analyses", bytes.NewReader([]byte("{not json")))
		rec := serveRouter(h, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing audio duration", func(t *testing.T) {
		h := NewHandlers(&mocks.MockAnalysisService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		body, _ := json.Marshal(map[string]any{"metrics": map[string]any{"wpm": 120}})
		req := httptest.NewRequest(http.MethodPost, "/v1/analyses", bytes.NewReader(body))
		rec := serveRouter(h, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("storage failure maps to 503", func(t *testing.T) {
		mockSvc := &mocks.MockAnalysisService{
			SubmitAnalysisFunc: func(ctx context.Context, req service.SubmitAnalysisRequest) (service.AnalysisResult, error) {
				return service.AnalysisResult{}, service.ErrStorageFailure
			},
		}
		h := NewHandlers(mockSvc, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		body, _ := json.Marshal(map[string]any{"metrics": map[string]any{"audio_duration_sec": 100}})
		req := httptest.NewRequest(http.MethodPost, "/v1/analyses", bytes.NewReader(body))
		rec := serveRouter(h, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

// TestGetAnalysisHandler tests GET /v1/analyses/{id}
func TestGetAnalysisHandler(t *testing.T) {
	t.Run("successful fetch on cache miss", func(t *testing.T) {
		mockSvc := &mocks.MockAnalysisService{
			GetAnalysisFunc: func(ctx context.Context, id int64) (service.AnalysisResult, error) {
				assert.Equal(t, int64(1), id)
				return sampleResult(), nil
			},
		}
		h := NewHandlers(mockSvc, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/analyses/1", nil)
		rec := serveRouter(h, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp analysisResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
	})

	t.Run("cache hit skips service", func(t *testing.T) {
		cached := sampleResult()
		mockCache := &mocks.MockCacher{
			GetFunc: func(ctx context.Context, key string, dest any) error {
				*dest.(*service.AnalysisResult) = cached
				return nil
			},
		}
		mockSvc := &mocks.MockAnalysisService{
			GetAnalysisFunc: func(ctx context.Context, id int64) (service.AnalysisResult, error) {
				return cached, nil
			},
		}
		h := NewHandlers(mockSvc, mockCache, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/analyses/1", nil)
		rec := serveRouter(h, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		mockSvc := &mocks.MockAnalysisService{
			GetAnalysisFunc: func(ctx context.Context, id int64) (service.AnalysisResult, error) {
				return service.AnalysisResult{}, service.ErrAnalysisNotFound
			},
		}
		h := NewHandlers(mockSvc, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/analyses/999", nil)
		rec := serveRouter(h, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-numeric id not routed", func(t *testing.T) {
		h := NewHandlers(&mocks.MockAnalysisService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/analyses/abc", nil)
		rec := serveRouter(h, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// TestListAnalysesHandler tests GET /v1/analyses
func TestListAnalysesHandler(t *testing.T) {
	t.Run("successful listing", func(t *testing.T) {
		mockSvc := &mocks.MockAnalysisService{
			ListAnalysesFunc: func(ctx context.Context, limit int) ([]service.AnalysisSummary, error) {
				assert.Equal(t, 5, limit)
				return []service.AnalysisSummary{
					{ID: 2, OverallBand: 7.0, Confidence: 0.9},
					{ID: 1, OverallBand: 6.0, Confidence: 0.8},
				}, nil
			},
		}
		h := NewHandlers(mockSvc, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/analyses?limit=5", nil)
		rec := serveRouter(h, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Analyses, 2)
		assert.Equal(t, int64(2), resp.Analyses[0].ID)
	})

	t.Run("invalid limit", func(t *testing.T) {
		h := NewHandlers(&mocks.MockAnalysisService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/analyses?limit=oops", nil)
		rec := serveRouter(h, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty listing maps to 404", func(t *testing.T) {
		mockSvc := &mocks.MockAnalysisService{
			ListAnalysesFunc: func(ctx context.Context, limit int) ([]service.AnalysisSummary, error) {
				return nil, service.ErrNoAnalyses
			},
		}
		h := NewHandlers(mockSvc, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/analyses", nil)
		rec := serveRouter(h, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// TestGetCriterionBandsHandler tests GET /v1/scores/criteria
func TestGetCriterionBandsHandler(t *testing.T) {
	t.Run("successful aggregation", func(t *testing.T) {
		mockSvc := &mocks.MockAnalysisService{
			GetCriterionAggregatesFunc: func(ctx context.Context, start, end time.Time) ([]service.AggregatedCriterionBands, error) {
				assert.Equal(t, 2026, start.Year())
				return []service.AggregatedCriterionBands{
					{
						Criterion:       "fluency_coherence",
						TotalAnalyses:   3,
						OverallMeanBand: 6.5,
						PeriodBands:     []service.PeriodBand{{Period: "2026-01-01", MeanBand: 6.5}},
					},
				}, nil
			},
		}
		h := NewHandlers(mockSvc, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/scores/criteria?start=2026-01-01&end=2026-01-10", nil)
		rec := serveRouter(h, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp criterionBandsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Criteria, 1)
		assert.Equal(t, "fluency_coherence", resp.Criteria[0].Criterion)
		assert.Equal(t, 6.5, resp.Criteria[0].OverallMeanBand)
	})

	t.Run("missing dates", func(t *testing.T) {
		h := NewHandlers(&mocks.MockAnalysisService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/scores/criteria", nil)
		rec := serveRouter(h, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("end before start", func(t *testing.T) {
		h := NewHandlers(&mocks.MockAnalysisService{}, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/scores/criteria?start=2026-02-01&end=2026-01-01", nil)
		rec := serveRouter(h, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// TestGetOverallBandAverageHandler tests GET /v1/scores/overall
func TestGetOverallBandAverageHandler(t *testing.T) {
	t.Run("successful fetch", func(t *testing.T) {
		mockSvc := &mocks.MockAnalysisService{
			GetOverallBandAverageFunc: func(ctx context.Context, start, end time.Time) (service.OverallBandAverage, error) {
				return service.OverallBandAverage{MeanBand: 6.75, Count: 12}, nil
			},
		}
		h := NewHandlers(mockSvc, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/scores/overall?start=2026-01-01&end=2026-01-31", nil)
		rec := serveRouter(h, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp overallBandResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 6.75, resp.MeanBand)
		assert.Equal(t, int64(12), resp.Count)
	})

	t.Run("cache hit serves cached value", func(t *testing.T) {
		mockCache := &mocks.MockCacher{
			GetFunc: func(ctx context.Context, key string, dest any) error {
				*dest.(*service.OverallBandAverage) = service.OverallBandAverage{MeanBand: 7.0, Count: 4}
				return nil
			},
		}
		mockSvc := &mocks.MockAnalysisService{
			GetOverallBandAverageFunc: func(ctx context.Context, start, end time.Time) (service.OverallBandAverage, error) {
				return service.OverallBandAverage{MeanBand: 5.0, Count: 1}, nil
			},
		}
		h := NewHandlers(mockSvc, mockCache, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/scores/overall?start=2026-01-01&end=2026-01-31", nil)
		rec := serveRouter(h, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp overallBandResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 7.0, resp.MeanBand)
	})

	t.Run("no analyses maps to 404", func(t *testing.T) {
		mockSvc := &mocks.MockAnalysisService{
			GetOverallBandAverageFunc: func(ctx context.Context, start, end time.Time) (service.OverallBandAverage, error) {
				return service.OverallBandAverage{}, service.ErrNoAnalyses
			},
		}
		h := NewHandlers(mockSvc, &mocks.MockCacher{}, zap.NewNop(), time.Minute)

		req := httptest.NewRequest(http.MethodGet, "/v1/scores/overall?start=2026-01-01&end=2026-01-31", nil)
		rec := serveRouter(h, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// TestFindAndCache tests the read-through cache helper
func TestFindAndCache(t *testing.T) {
	logger := zap.NewNop()

	t.Run("cache error falls through to fetch", func(t *testing.T) {
		mockCache := &mocks.MockCacher{
			GetFunc: func(ctx context.Context, key string, dest any) error {
				return errors.New("connection refused")
			},
		}
		h := NewHandlers(&mocks.MockAnalysisService{}, mockCache, logger, time.Minute)

		got, err := FindAndCache(context.Background(), h.cache, &h.sfGroup, "k", time.Minute, logger, func(ctx context.Context) (int, error) {
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("fetch failure is returned", func(t *testing.T) {
		h := NewHandlers(&mocks.MockAnalysisService{}, &mocks.MockCacher{}, logger, time.Minute)

		_, err := FindAndCache(context.Background(), h.cache, &h.sfGroup, "k2", time.Minute, logger, func(ctx context.Context) (int, error) {
			return 0, errors.New("boom")
		})
		assert.Error(t, err)
	})
}

// TestAddTTLJitter tests jitter bounds
func TestAddTTLJitter(t *testing.T) {
	base := 10 * time.Minute
	for i := 0; i < 50; i++ {
		got := addTTLJitter(base)
		assert.GreaterOrEqual(t, got, base-15*time.Second)
		assert.LessOrEqual(t, got, base+15*time.Second)
	}

	assert.Equal(t, time.Duration(0), addTTLJitter(0))
}
