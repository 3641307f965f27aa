package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/core/ingest"
	"hospital_dimensioning/pkg/core/pipeline"
	"hospital_dimensioning/pkg/core/ranking"
	"hospital_dimensioning/pkg/core/variance"
	"hospital_dimensioning/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// selection holds the per-command overrides of the configured options.
type selection struct {
	level  string
	metric string
	by     string
}

func (s *selection) register(cmd *cobra.Command, withRanking bool) {
	cmd.Flags().StringVarP(&s.level, "level", "l", "", "Aggregation level: hospital, grupo, regiao or rede")
	if withRanking {
		cmd.Flags().StringVarP(&s.metric, "metric", "m", "", "Ranked metric: cost or quantity")
		cmd.Flags().StringVar(&s.by, "by", "", "Ranking mode: percent or absolute")
	}
}

// options applies the flag overrides on top of the configuration.
func (a *app) options(s selection) (pipeline.Options, error) {
	cfg := *a.cfg
	if s.level != "" {
		cfg.Level = s.level
	}
	if s.metric != "" {
		cfg.Metric = s.metric
	}
	if s.by != "" {
		cfg.RankBy = s.by
	}
	return cfg.PipelineOptions()
}

func (a *app) resolve(path string) (*ingest.Resolved, error) {
	ds, err := ingest.Load(path)
	if err != nil {
		return nil, err
	}
	res, err := ingest.Resolve(ds)
	if err != nil {
		return nil, err
	}
	if res.Defects > 0 {
		a.logger.Debug("dataset normalized with defects", zap.String("path", path), zap.Int("defects", res.Defects))
	}
	return res, nil
}

// =============================================================================
// AGGREGATE
// =============================================================================

type viewTotals struct {
	hierarchy.AggregatedView
	TotalCost      decimal.Decimal `json:"totalCost"`
	TotalHeadcount int             `json:"totalHeadcount"`
}

func (a *app) aggregateCmd() *cobra.Command {
	var (
		sel   selection
		state string
	)
	cmd := &cobra.Command{
		Use:   "aggregate [dataset]",
		Short: "Flatten sectors per entity at one level and total them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(sel)
			if err != nil {
				return err
			}
			st, err := models.ParseStateKind(state)
			if err != nil {
				return err
			}
			res, err := a.resolve(args[0])
			if err != nil {
				return err
			}

			views := hierarchy.Aggregate(res.Tree(st), opts.Level)
			out := make([]viewTotals, 0, len(views))
			for _, v := range views {
				out = append(out, viewTotals{AggregatedView: v, TotalCost: v.TotalCost(), TotalHeadcount: v.TotalHeadcount()})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	sel.register(cmd, false)
	cmd.Flags().StringVarP(&state, "state", "s", string(models.StateCurrent), "State: atual, baseline or projetado")
	return cmd
}

// =============================================================================
// VARIANCE
// =============================================================================

type viewVariance struct {
	Summary variance.VarianceRecord   `json:"summary"`
	Sectors []variance.VarianceRecord `json:"sectors"`
}

func (a *app) varianceCmd() *cobra.Command {
	var (
		sel      selection
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "variance [dataset]",
		Short: "Compare two states sector by sector for every entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(sel)
			if err != nil {
				return err
			}
			ref, err := models.ParseStateKind(from)
			if err != nil {
				return err
			}
			tgt, err := models.ParseStateKind(to)
			if err != nil {
				return err
			}
			res, err := a.resolve(args[0])
			if err != nil {
				return err
			}

			refViews := hierarchy.Aggregate(res.Tree(ref), opts.Level)
			targets := make(map[string]hierarchy.AggregatedView)
			for _, v := range hierarchy.Aggregate(res.Tree(tgt), opts.Level) {
				targets[v.EntityID] = v
			}

			out := make([]viewVariance, 0, len(refViews))
			for _, v := range refViews {
				sectors := variance.Compare(v.Sectors(), targets[v.EntityID].Sectors(), ref, tgt)
				summary := variance.Summarize(v.EntityID, v.EntityName, sectors)
				summary.Reference, summary.Target = ref, tgt
				out = append(out, viewVariance{Summary: summary, Sectors: sectors})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	sel.register(cmd, false)
	cmd.Flags().StringVar(&from, "from", string(models.StateBaseline), "Reference state")
	cmd.Flags().StringVar(&to, "to", string(models.StateProjected), "Target state")
	return cmd
}

// =============================================================================
// RANK
// =============================================================================

func (a *app) rankCmd() *cobra.Command {
	var (
		sel         selection
		leaderboard bool
	)
	cmd := &cobra.Command{
		Use:   "rank [dataset]",
		Short: "Rank entities by Baseline to Projetado variance",
		Long: `Ranks entities by the magnitude of their variance, largest first.
With --leaderboard the signed percent ordering is used instead: cost lists the
largest reduction first, quantity the largest increase first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(sel)
			if err != nil {
				return err
			}
			ranker, err := ranking.NewRanker(opts.Locale)
			if err != nil {
				return err
			}
			res, err := a.resolve(args[0])
			if err != nil {
				return err
			}

			records := variance.CompareViews(
				hierarchy.Aggregate(res.Baseline, opts.Level),
				hierarchy.Aggregate(res.Projected, opts.Level),
				models.StateBaseline, models.StateProjected,
			)
			var ranked []variance.VarianceRecord
			switch {
			case leaderboard && opts.Metric == variance.MetricQuantity:
				ranked = ranker.Leaderboard(records, opts.Metric, ranking.Descending)
			case leaderboard:
				ranked = ranker.Leaderboard(records, opts.Metric, ranking.Ascending)
			default:
				ranked = ranker.Rank(records, opts.Metric, opts.By)
			}
			return writeJSON(cmd.OutOrStdout(), ranked)
		},
	}
	sel.register(cmd, true)
	cmd.Flags().BoolVar(&leaderboard, "leaderboard", false, "Order by signed percent instead of magnitude")
	return cmd
}

// =============================================================================
// REPORT
// =============================================================================

func (a *app) reportCmd() *cobra.Command {
	var sel selection
	cmd := &cobra.Command{
		Use:   "report [dataset]",
		Short: "Run the full pipeline and print the dashboard report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options(sel)
			if err != nil {
				return err
			}
			res, err := a.resolve(args[0])
			if err != nil {
				return err
			}

			orch, err := pipeline.NewOrchestrator(opts, a.logger)
			if err != nil {
				return err
			}
			orch.SetValidationConfig(a.cfg.ValidationConfig())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := orch.Run(ctx, res, nil)
			if err != nil {
				return fmt.Errorf("report: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	sel.register(cmd, true)
	return cmd
}
