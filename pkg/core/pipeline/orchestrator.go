// Package pipeline runs the full dashboard computation for one dataset:
// aggregate every state at one level, compare Baseline to Projetado per view,
// then rank, decompose and check the results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/core/ingest"
	"hospital_dimensioning/pkg/core/ranking"
	"hospital_dimensioning/pkg/core/store"
	"hospital_dimensioning/pkg/core/validate"
	"hospital_dimensioning/pkg/core/variance"
	"hospital_dimensioning/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrIntegrity is returned in strict mode when an integrity check fails.
var ErrIntegrity = errors.New("integrity checks failed")

// ValidationConfig defines thresholds and behavior of the integrity stage.
type ValidationConfig struct {
	EnableStrictValidation bool    // If true, failed checks stop the pipeline
	OutlierThresholdPct    float64 // Percent change above which a sector is flagged
}

// Options select what the orchestrator computes.
type Options struct {
	Level      hierarchy.Level
	Metric     variance.Metric
	By         ranking.By
	Locale     string
	Workers    int
	StartLabel string
	EndLabel   string
	RunID      string // generated when empty
}

// DefaultOptions ranks network views by absolute cost variance.
func DefaultOptions() Options {
	return Options{
		Level:      hierarchy.LevelNetwork,
		Metric:     variance.MetricCost,
		By:         ranking.ByAbsolute,
		Locale:     "pt-BR",
		Workers:    4,
		StartLabel: "Baseline",
		EndLabel:   "Projetado",
	}
}

// Orchestrator manages the data flow:
// Resolve -> Aggregate (per state, cached) -> Variance -> Ranking/Waterfall -> Integrity
type Orchestrator struct {
	opts             Options
	ranker           ranking.Ranker
	logger           *zap.Logger
	validationConfig ValidationConfig
}

// NewOrchestrator creates an orchestrator. A nil logger discards output.
func NewOrchestrator(opts Options, logger *zap.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	ranker, err := ranking.NewRanker(opts.Locale)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		opts:   opts,
		ranker: ranker,
		logger: logger,
		validationConfig: ValidationConfig{
			EnableStrictValidation: false, // Default: log failures but proceed
			OutlierThresholdPct:    50,
		},
	}, nil
}

// SetValidationConfig updates the validation configuration.
func (o *Orchestrator) SetValidationConfig(config ValidationConfig) {
	o.validationConfig = config
}

// Run computes the report for an already-resolved dataset. The cache is
// request scoped: pass a fresh one per run, or nil to create one.
func (o *Orchestrator) Run(ctx context.Context, res *ingest.Resolved, cache *store.SectorCache) (*Report, error) {
	if cache == nil {
		cache = store.NewSectorCache()
	}
	runID := o.opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := o.logger.With(zap.String("run_id", runID), zap.String("level", string(o.opts.Level)))
	start := time.Now()
	log.Info("pipeline started", zap.Int("workers", o.opts.Workers))

	if res.Defects > 0 {
		log.Debug("normalization coerced malformed fields", zap.Int("defects", res.Defects))
	}

	// 1. Aggregation
	views := make(map[models.StateKind][]hierarchy.AggregatedView, 3)
	for _, state := range []models.StateKind{models.StateCurrent, models.StateBaseline, models.StateProjected} {
		tree := res.Tree(state)
		views[state] = cache.GetOrCompute(store.CacheKey{State: state, Level: o.opts.Level}, func() []hierarchy.AggregatedView {
			return hierarchy.Aggregate(tree, o.opts.Level)
		})
		log.Debug("aggregated", zap.String("state", string(state)), zap.Int("views", len(views[state])))
	}

	// 2. Variance per view
	current := views[models.StateCurrent]
	baseline := byEntity(views[models.StateBaseline])
	projected := byEntity(views[models.StateProjected])

	results := make([]ViewReport, len(current))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for i, cur := range current {
		i, cur := i, cur
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vr, err := o.computeView(cur, baseline[cur.EntityID], projected[cur.EntityID])
			if err != nil {
				return fmt.Errorf("view %s: %w", cur.EntityName, err)
			}
			results[i] = vr
			log.Debug("view computed",
				zap.String("entity", cur.EntityName),
				zap.Int("sectors", len(vr.Sectors)),
				zap.String("cost_delta", vr.Summary.Cost.Delta.String()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("pipeline failed", zap.Error(err))
		return nil, err
	}

	// 3. Cross-view ranking and decomposition
	summaries := make([]variance.VarianceRecord, len(results))
	sectors := make([]variance.VarianceRecord, 0)
	for i, vr := range results {
		summaries[i] = vr.Summary
		sectors = append(sectors, o.crossViewSectors(vr)...)
	}

	report := &Report{
		RunID:   runID,
		Level:   o.opts.Level,
		Metric:  o.opts.Metric,
		By:      o.opts.By,
		Views:   results,
		Ranking: o.ranker.Rank(summaries, o.opts.Metric, o.opts.By),
		Roles:   variance.RollupRoles(sectors),
		Defects: res.Defects,
	}
	report.Leaderboard = o.leaderboard(summaries)
	if top, ok := o.ranker.LargestDeviation(sectors, o.opts.Metric, o.opts.By); ok {
		report.LargestDeviation = &top
	}

	waterfall, err := ranking.VarianceWaterfall(summaries, o.opts.Metric, o.opts.StartLabel, o.opts.EndLabel)
	if err != nil {
		log.Error("waterfall does not reconcile", zap.Error(err))
		return nil, err
	}
	report.Waterfall = waterfall

	// 4. Integrity
	report.Integrity = o.checkIntegrity(res, views, results)
	for _, name := range report.Integrity.FailedChecks {
		if o.validationConfig.EnableStrictValidation {
			log.Error("integrity check failed", zap.String("check", name))
		} else {
			log.Warn("integrity check failed", zap.String("check", name))
		}
	}
	if len(report.Integrity.Outliers) > 0 {
		log.Info("outliers flagged", zap.Int("count", len(report.Integrity.Outliers)))
	}
	if !report.Integrity.AllPassed && o.validationConfig.EnableStrictValidation {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, report.Integrity.FailedChecks)
	}

	hits, _ := cache.Stats()
	report.CacheHits = hits
	log.Info("pipeline completed", zap.Int("views", len(results)), zap.Duration("elapsed", time.Since(start)))
	return report, nil
}

// computeView compares one entity's Baseline and Projetado sectors and
// carries its Atual values along.
func (o *Orchestrator) computeView(cur, base, proj hierarchy.AggregatedView) (ViewReport, error) {
	sectors := variance.CompareWithCurrent(base.Sectors(), cur.Sectors(), proj.Sectors())
	summary := variance.Summarize(cur.EntityID, cur.EntityName, sectors)
	summary.Reference, summary.Target = models.StateBaseline, models.StateProjected

	waterfall, err := ranking.VarianceWaterfall(sectors, o.opts.Metric, o.opts.StartLabel, o.opts.EndLabel)
	if err != nil {
		return ViewReport{}, err
	}

	return ViewReport{
		EntityID:   cur.EntityID,
		EntityName: cur.EntityName,
		Hospitals:  cur.Hospitals,
		Totals: map[models.StateKind]Totals{
			models.StateCurrent:   totalsOf(cur),
			models.StateBaseline:  totalsOf(base),
			models.StateProjected: totalsOf(proj),
		},
		Summary:    summary,
		Sectors:    sectors,
		Roles:      summary.Roles,
		TopSectors: o.ranker.Rank(sectors, o.opts.Metric, o.opts.By),
		Waterfall:  waterfall,
	}, nil
}

func (o *Orchestrator) leaderboard(records []variance.VarianceRecord) []variance.VarianceRecord {
	if o.opts.Metric == variance.MetricQuantity {
		return o.ranker.Leaderboard(records, variance.MetricQuantity, ranking.Descending)
	}
	return o.ranker.Leaderboard(records, variance.MetricCost, ranking.Ascending)
}

func (o *Orchestrator) checkIntegrity(res *ingest.Resolved, views map[models.StateKind][]hierarchy.AggregatedView, results []ViewReport) *validate.Report {
	report := validate.NewReport(o.opts.Level)
	for _, state := range []models.StateKind{models.StateCurrent, models.StateBaseline, models.StateProjected} {
		report.AddViews(res.Tree(state), views[state])
	}
	for _, vr := range results {
		report.AddTotals(vr.Summary, vr.Sectors)
		report.AddOutliers(vr.Sectors, o.opts.Metric, o.validationConfig.OutlierThresholdPct)
	}
	return report
}

// crossViewSectors returns a view's sector records ready to be ranked next to
// other views. Hospital views leave HospitalName empty on their own sectors,
// so it is filled from the view to keep equal names in different hospitals apart.
func (o *Orchestrator) crossViewSectors(vr ViewReport) []variance.VarianceRecord {
	if o.opts.Level != hierarchy.LevelHospital {
		return vr.Sectors
	}
	out := make([]variance.VarianceRecord, len(vr.Sectors))
	for i, rec := range vr.Sectors {
		if rec.HospitalName == "" {
			rec.HospitalName = vr.EntityName
		}
		rec.Roles = make([]variance.VarianceRecord, len(rec.Roles))
		for j, r := range vr.Sectors[i].Roles {
			if r.HospitalName == "" {
				r.HospitalName = vr.EntityName
			}
			rec.Roles[j] = r
		}
		out[i] = rec
	}
	return out
}

func byEntity(views []hierarchy.AggregatedView) map[string]hierarchy.AggregatedView {
	out := make(map[string]hierarchy.AggregatedView, len(views))
	for _, v := range views {
		out[v.EntityID] = v
	}
	return out
}
