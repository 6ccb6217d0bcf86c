// Package services orchestrates storage, statistics and caching into the
// operations exposed by the API layer.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/reliastack/reliabase-engine/internal/analytics"
	"github.com/reliastack/reliabase-engine/internal/cache"
	"github.com/reliastack/reliabase-engine/internal/engine"
	"github.com/reliastack/reliabase-engine/internal/metrics"
	"github.com/reliastack/reliabase-engine/internal/models"
	"github.com/reliastack/reliabase-engine/internal/utils"
)

const recentEventLimit = 20

// Store defines the storage operations the analysis service needs.
type Store interface {
	GetAsset(ctx context.Context, id int64) (models.Asset, error)
	ListAssets(ctx context.Context) ([]models.Asset, error)
	ListExposures(ctx context.Context, assetID int64) ([]models.ExposureLog, error)
	ListEvents(ctx context.Context, assetID int64) ([]models.Event, error)
	FailureModeCounts(ctx context.Context, assetID int64) ([]models.FailureModeCount, error)
}

// AnalysisOptions tunes one analysis run. Zero values fall back to the
// service defaults taken from configuration.
type AnalysisOptions struct {
	BootstrapResamples int
	BootstrapSeed      int64
	CurvePoints        int
	Workers            int
	ConfidenceAlpha    float64
	SkipCache          bool
}

// Defaults carries the configured analysis parameters.
type Defaults struct {
	BootstrapResamples int
	FleetResamples     int
	BootstrapSeed      int64
	CurvePoints        int
	Workers            int
	ConfidenceAlpha    float64
	CacheTTL           time.Duration
}

// AnalysisService runs the statistical pipeline for assets and fleets.
type AnalysisService struct {
	logger    *slog.Logger
	store     Store
	fitter    *engine.Fitter
	cache     cache.Provider
	defaults  Defaults
	latencies *utils.LatencyTracker
}

// NewAnalysisService wires the service. A nil cache disables result caching.
func NewAnalysisService(logger *slog.Logger, store Store, fitter *engine.Fitter, cacheProvider cache.Provider, defaults Defaults) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if fitter == nil {
		fitter = engine.NewFitter(nil)
	}
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	if defaults.BootstrapResamples <= 0 {
		defaults.BootstrapResamples = 1000
	}
	if defaults.FleetResamples <= 0 {
		defaults.FleetResamples = 200
	}
	if defaults.CurvePoints <= 0 {
		defaults.CurvePoints = 100
	}
	if defaults.ConfidenceAlpha <= 0 || defaults.ConfidenceAlpha >= 1 {
		defaults.ConfidenceAlpha = 0.05
	}
	if defaults.CacheTTL <= 0 {
		defaults.CacheTTL = 5 * time.Minute
	}
	return &AnalysisService{
		logger:    logger,
		store:     store,
		fitter:    fitter,
		cache:     cacheProvider,
		defaults:  defaults,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// AnalyzeAsset builds the full analytics document for one asset.
func (s *AnalysisService) AnalyzeAsset(ctx context.Context, assetID int64, opts AnalysisOptions) (models.AssetAnalytics, error) {
	opts = s.fillOptions(opts)

	// Every option that changes the document must appear in the key.
	cacheKey := fmt.Sprintf("analysis:%d:%d:%d:%d:%g",
		assetID, opts.BootstrapResamples, opts.BootstrapSeed, opts.CurvePoints, opts.ConfidenceAlpha)
	if !opts.SkipCache {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var doc models.AssetAnalytics
			if err := json.Unmarshal(cached, &doc); err == nil {
				s.logger.Debug("analysis cache hit", slog.Int64("asset_id", assetID))
				return doc, nil
			}
		}
	}

	start := time.Now()
	doc, err := s.analyze(ctx, assetID, opts)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveAnalysis(duration, metrics.OutcomeError)
		return models.AssetAnalytics{}, err
	}
	s.latencies.Observe(duration)
	metrics.ObserveAnalysis(duration, metrics.OutcomeSuccess)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("analysis latency",
			slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}

	if !opts.SkipCache {
		if payload, err := json.Marshal(doc); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.defaults.CacheTTL); err != nil {
				s.logger.Warn("analysis cache store failed", slog.Any("error", err))
			}
		}
	}
	return doc, nil
}

func (s *AnalysisService) analyze(ctx context.Context, assetID int64, opts AnalysisOptions) (models.AssetAnalytics, error) {
	asset, err := s.store.GetAsset(ctx, assetID)
	if err != nil {
		return models.AssetAnalytics{}, err
	}
	exposures, err := s.store.ListExposures(ctx, assetID)
	if err != nil {
		return models.AssetAnalytics{}, err
	}
	events, err := s.store.ListEvents(ctx, assetID)
	if err != nil {
		return models.AssetAnalytics{}, err
	}

	kpis, intervals, err := analytics.AggregateKPIs(exposures, events)
	if err != nil {
		return models.AssetAnalytics{}, err
	}

	doc := models.AssetAnalytics{
		AnalysisID:   uuid.NewString(),
		AssetID:      asset.ID,
		AssetName:    asset.Name,
		KPIs:         kpis,
		Intervals:    intervals,
		RecentEvents: recentEvents(events, recentEventLimit),
		GeneratedAt:  time.Now().UTC(),
	}

	if counts, err := s.store.FailureModeCounts(ctx, assetID); err == nil {
		doc.FailureModes = counts
	} else {
		s.logger.Warn("failure mode counts unavailable", slog.Any("error", err))
	}

	if hasObserved(intervals) {
		s.fitAndEnrich(&doc, intervals, opts)
	} else {
		s.logger.Debug("no observed failures, skipping lifetime fit", slog.Int64("asset_id", assetID))
	}
	return doc, nil
}

// fitAndEnrich attaches the Weibull fit, confidence intervals, curves and
// life metrics. Fit failures degrade to a KPI-only document rather than
// failing the whole analysis.
func (s *AnalysisService) fitAndEnrich(doc *models.AssetAnalytics, intervals []models.TBFInterval, opts AnalysisOptions) {
	fit, err := s.fitter.Fit(intervals)
	if err != nil {
		s.logger.Warn("weibull fit failed",
			slog.Int64("asset_id", doc.AssetID), slog.Any("error", err))
		return
	}

	summary := models.WeibullSummary{
		Shape:         fit.Shape,
		Scale:         fit.Scale,
		LogLikelihood: fit.LogLikelihood,
	}

	ci, err := s.fitter.BootstrapCI(intervals, engine.BootstrapOptions{
		Resamples: opts.BootstrapResamples,
		Alpha:     opts.ConfidenceAlpha,
		Workers:   opts.Workers,
		Seed:      opts.BootstrapSeed,
	})
	metrics.ObserveBootstrap(opts.BootstrapResamples)
	if err != nil {
		s.logger.Warn("bootstrap interval failed",
			slog.Int64("asset_id", doc.AssetID), slog.Any("error", err))
	} else {
		summary.ShapeCI = ci.Shape
		summary.ScaleCI = ci.Scale
	}
	doc.Weibull = &summary

	maxInterval := 0.0
	for _, iv := range intervals {
		if iv.DurationHours > maxInterval {
			maxInterval = iv.DurationHours
		}
	}
	curve, err := engine.GenerateCurves(fit, engine.CurveSpec{
		Points:  opts.CurvePoints,
		MaxTime: maxInterval * 1.5,
	})
	if err != nil {
		s.logger.Warn("curve generation failed", slog.Any("error", err))
	} else {
		doc.Curve = &curve
	}

	life := models.LifeMetrics{
		AverageFailureRate: engine.AverageFailureRate(intervals),
	}
	if b10, err := engine.BLife(fit, 0.10); err == nil {
		life.B10Hours = b10
	}
	if mttf, err := engine.MTTF(fit); err == nil {
		life.MTTFHours = mttf
	}
	if ratio, ok := engine.RepairTrend(intervals); ok {
		life.RepairTrendRatio = &ratio
	}
	doc.LifeMetrics = &life
}

// FleetAssetSummary is one asset's row of the fleet view.
type FleetAssetSummary struct {
	AssetID      int64                  `json:"asset_id"`
	AssetName    string                 `json:"asset_name"`
	KPIs         models.KPISummary      `json:"kpis"`
	Weibull      *models.WeibullSummary `json:"weibull,omitempty"`
	HealthIndex  float64                `json:"health_index"`
	HealthGrade  string                 `json:"health_grade"`
	FailureCount int                    `json:"failure_count"`
}

// FleetView is the cross-asset summary with bad-actor ranking.
type FleetView struct {
	Assets      []FleetAssetSummary       `json:"assets"`
	BadActors   []analytics.BadActorEntry `json:"bad_actors"`
	GeneratedAt time.Time                 `json:"generated_at"`
}

// FleetAnalytics summarises every asset with a reduced bootstrap budget.
// Assets whose analysis fails are skipped with a warning instead of failing
// the fleet view.
func (s *AnalysisService) FleetAnalytics(ctx context.Context, limit int) (FleetView, error) {
	assets, err := s.store.ListAssets(ctx)
	if err != nil {
		return FleetView{}, err
	}
	if limit > 0 && len(assets) > limit {
		assets = assets[:limit]
	}

	view := FleetView{GeneratedAt: time.Now().UTC()}
	badActorInputs := make([]analytics.BadActorInput, 0, len(assets))

	for _, asset := range assets {
		doc, err := s.AnalyzeAsset(ctx, asset.ID, AnalysisOptions{
			BootstrapResamples: s.defaults.FleetResamples,
		})
		if err != nil {
			s.logger.Warn("fleet analysis skipped asset",
				slog.Int64("asset_id", asset.ID), slog.Any("error", err))
			continue
		}

		events, err := s.store.ListEvents(ctx, asset.ID)
		if err != nil {
			s.logger.Warn("fleet events unavailable", slog.Int64("asset_id", asset.ID), slog.Any("error", err))
		}
		split := analytics.DowntimeSplit(events)

		health := analytics.ComputeHealthIndex(analytics.HealthInputs{
			Availability:     doc.KPIs.Availability,
			MTBFHours:        doc.KPIs.MTBFHours,
			UnplannedRatio:   split.UnplannedRatio,
			WeibullShape:     weibullShape(doc.Weibull),
			RepairTrendRatio: repairTrend(doc.LifeMetrics),
		})

		view.Assets = append(view.Assets, FleetAssetSummary{
			AssetID:      asset.ID,
			AssetName:    asset.Name,
			KPIs:         doc.KPIs,
			Weibull:      doc.Weibull,
			HealthIndex:  health.Score,
			HealthGrade:  health.Grade,
			FailureCount: doc.KPIs.FailureCount,
		})
		badActorInputs = append(badActorInputs, analytics.BadActorInput{
			AssetID:            asset.ID,
			AssetName:          asset.Name,
			FailureCount:       doc.KPIs.FailureCount,
			TotalDowntimeHours: split.TotalDowntimeHours,
			Availability:       doc.KPIs.Availability,
		})
	}

	view.BadActors = analytics.RankBadActors(badActorInputs, 10)
	return view, nil
}

func (s *AnalysisService) fillOptions(opts AnalysisOptions) AnalysisOptions {
	if opts.BootstrapResamples <= 0 {
		opts.BootstrapResamples = s.defaults.BootstrapResamples
	}
	if opts.BootstrapSeed == 0 {
		opts.BootstrapSeed = s.defaults.BootstrapSeed
	}
	if opts.CurvePoints <= 0 {
		opts.CurvePoints = s.defaults.CurvePoints
	}
	if opts.Workers <= 0 {
		opts.Workers = s.defaults.Workers
	}
	if opts.ConfidenceAlpha <= 0 || opts.ConfidenceAlpha >= 1 {
		opts.ConfidenceAlpha = s.defaults.ConfidenceAlpha
	}
	return opts
}

// LatencyP95 returns the current p95 analysis latency.
func (s *AnalysisService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}

func hasObserved(intervals []models.TBFInterval) bool {
	for _, iv := range intervals {
		if !iv.Censored {
			return true
		}
	}
	return false
}

func recentEvents(events []models.Event, limit int) []models.EventSummary {
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	summaries := make([]models.EventSummary, 0, len(events))
	for _, e := range events {
		summaries = append(summaries, models.EventSummary{
			ID:              e.ID,
			Timestamp:       e.Timestamp,
			Type:            e.Type,
			DowntimeMinutes: e.DowntimeMinutes,
			Description:     e.Description,
		})
	}
	return summaries
}

func weibullShape(summary *models.WeibullSummary) float64 {
	if summary == nil {
		return 0
	}
	return summary.Shape
}

func repairTrend(life *models.LifeMetrics) float64 {
	if life == nil || life.RepairTrendRatio == nil {
		return 0
	}
	return *life.RepairTrendRatio
}
