// Package validate provides integrity checks over aggregated and compared
// staffing data. These functions can be called from tests, the pipeline, or
// the CLI to verify that sums of parts match their totals.
package validate

import (
	"fmt"
	"math"

	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/core/variance"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AGGREGATION ADDITIVITY
// =============================================================================

// AdditivityCheck verifies that a parent view totals the sum of its hospitals.
type AdditivityCheck struct {
	EntityID       string          `json:"entityId"`
	EntityName     string          `json:"entityName"`
	ViewCost       decimal.Decimal `json:"viewCost"`
	PartsCost      decimal.Decimal `json:"partsCost"`
	CostDifference decimal.Decimal `json:"costDifference"`
	ViewHeadcount  int             `json:"viewHeadcount"`
	PartsHeadcount int             `json:"partsHeadcount"`
	IsAdditive     bool            `json:"isAdditive"`
}

// CheckAdditivity recomputes the hospital views beneath view's entity and
// compares their sum with the view totals.
func CheckAdditivity(entities []hierarchy.Entity, view hierarchy.AggregatedView) (*AdditivityCheck, error) {
	root, ok := hierarchy.Find(entities, view.EntityID)
	if !ok {
		return nil, fmt.Errorf("entity %q not found", view.EntityID)
	}

	partsCost := decimal.Zero
	partsHeadcount := 0
	for _, h := range hierarchy.Aggregate([]hierarchy.Entity{root}, hierarchy.LevelHospital) {
		partsCost = partsCost.Add(h.TotalCost())
		partsHeadcount += h.TotalHeadcount()
	}

	viewCost := view.TotalCost()
	diff := viewCost.Sub(partsCost)
	return &AdditivityCheck{
		EntityID:       view.EntityID,
		EntityName:     view.EntityName,
		ViewCost:       viewCost,
		PartsCost:      partsCost,
		CostDifference: diff,
		ViewHeadcount:  view.TotalHeadcount(),
		PartsHeadcount: partsHeadcount,
		IsAdditive:     diff.IsZero() && view.TotalHeadcount() == partsHeadcount,
	}, nil
}

// =============================================================================
// VARIANCE TOTALS
// =============================================================================

// TotalsCheck verifies that a summary record equals the sum of its parts and
// that its deltas are target minus reference.
type TotalsCheck struct {
	EntityID     string          `json:"entityId"`
	CostSum      decimal.Decimal `json:"costSum"`
	CostReported decimal.Decimal `json:"costReported"`
	QtySum       decimal.Decimal `json:"quantitySum"`
	QtyReported  decimal.Decimal `json:"quantityReported"`
	IsBalanced   bool            `json:"isBalanced"`
}

// CheckVarianceTotals compares summary against the recomputed totals of parts.
func CheckVarianceTotals(summary variance.VarianceRecord, parts []variance.VarianceRecord) *TotalsCheck {
	qty, cost := variance.Totals(parts)
	check := &TotalsCheck{
		EntityID:     summary.EntityID,
		CostSum:      cost.Delta,
		CostReported: summary.Cost.Delta,
		QtySum:       qty.Delta,
		QtyReported:  summary.Quantity.Delta,
	}
	check.IsBalanced = measureEqual(summary.Cost, cost) &&
		measureEqual(summary.Quantity, qty) &&
		consistent(summary.Cost) && consistent(summary.Quantity)
	return check
}

func measureEqual(a, b variance.Measure) bool {
	return a.Reference.Equal(b.Reference) && a.Target.Equal(b.Target) && a.Delta.Equal(b.Delta)
}

func consistent(m variance.Measure) bool {
	return m.Delta.Equal(m.Target.Sub(m.Reference))
}

// =============================================================================
// OUTLIER DETECTION
// =============================================================================

// OutlierCheck flags a suspicious variance.
type OutlierCheck struct {
	Item      string  `json:"item"`
	ChangePct float64 `json:"changePct"`
	IsOutlier bool    `json:"isOutlier"`
	Reason    string  `json:"reason,omitempty"`
	Threshold float64 `json:"threshold"`
}

// CheckForOutlier flags records whose target dropped to zero or whose percent
// change exceeds thresholdPct.
func CheckForOutlier(r variance.VarianceRecord, metric variance.Metric, thresholdPct float64) *OutlierCheck {
	m := r.Measure(metric)
	check := &OutlierCheck{
		Item:      r.Label(),
		ChangePct: m.DeltaPercent,
		Threshold: thresholdPct,
	}

	// A value that vanishes is more often missing data than a real cut.
	if m.Target.IsZero() && m.Reference.IsPositive() {
		check.IsOutlier = true
		check.Reason = "value dropped to zero (likely missing data)"
		return check
	}

	if math.Abs(m.DeltaPercent) > thresholdPct {
		check.IsOutlier = true
		check.Reason = fmt.Sprintf("change of %.1f%% exceeds threshold of %.1f%%", m.DeltaPercent, thresholdPct)
	}
	return check
}
