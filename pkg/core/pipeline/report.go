package pipeline

import (
	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/core/ranking"
	"hospital_dimensioning/pkg/core/validate"
	"hospital_dimensioning/pkg/core/variance"
	"hospital_dimensioning/pkg/models"

	"github.com/shopspring/decimal"
)

// Report is the output of one pipeline run.
type Report struct {
	RunID            string                    `json:"runId"`
	Level            hierarchy.Level           `json:"level"`
	Metric           variance.Metric           `json:"metric"`
	By               ranking.By                `json:"rankBy"`
	Views            []ViewReport              `json:"views"`
	Ranking          []variance.VarianceRecord `json:"ranking"`
	Leaderboard      []variance.VarianceRecord `json:"leaderboard"`
	LargestDeviation *variance.VarianceRecord  `json:"largestDeviation,omitempty"`
	Roles            []variance.VarianceRecord `json:"roles"`
	Waterfall        []ranking.WaterfallStep   `json:"waterfall"`
	Integrity        *validate.Report          `json:"integrity"`
	Defects          int                       `json:"defects"`
	CacheHits        int64                     `json:"cacheHits"`
}

// ViewReport holds everything computed for one aggregated entity.
type ViewReport struct {
	EntityID   string                      `json:"entityId"`
	EntityName string                      `json:"entityName"`
	Hospitals  []string                    `json:"hospitals"`
	Totals     map[models.StateKind]Totals `json:"totals"`
	Summary    variance.VarianceRecord     `json:"summary"`
	Sectors    []variance.VarianceRecord   `json:"sectors"`
	Roles      []variance.VarianceRecord   `json:"roles"`
	TopSectors []variance.VarianceRecord   `json:"topSectors"`
	Waterfall  []ranking.WaterfallStep     `json:"waterfall"`
}

// Totals are the summed cost and headcount of one view in one state.
type Totals struct {
	Cost      decimal.Decimal `json:"cost"`
	Headcount int             `json:"headcount"`
}

func totalsOf(v hierarchy.AggregatedView) Totals {
	return Totals{Cost: v.TotalCost(), Headcount: v.TotalHeadcount()}
}
