package validate

import (
	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/core/variance"
)

// Report collects every integrity check run over one aggregation level.
type Report struct {
	Level        hierarchy.Level    `json:"level"`
	Additivity   []*AdditivityCheck `json:"additivity,omitempty"`
	Totals       []*TotalsCheck     `json:"totals,omitempty"`
	Outliers     []*OutlierCheck    `json:"outliers,omitempty"`
	AllPassed    bool               `json:"allPassed"`
	FailedChecks []string           `json:"failedChecks,omitempty"`
}

// NewReport starts a passing report for level.
func NewReport(level hierarchy.Level) *Report {
	return &Report{Level: level, AllPassed: true}
}

// AddViews runs CheckAdditivity for every view.
func (r *Report) AddViews(entities []hierarchy.Entity, views []hierarchy.AggregatedView) {
	for _, v := range views {
		check, err := CheckAdditivity(entities, v)
		if err != nil {
			r.fail("additivity " + v.EntityID + ": " + err.Error())
			continue
		}
		r.Additivity = append(r.Additivity, check)
		if !check.IsAdditive {
			r.fail("additivity " + v.EntityName)
		}
	}
}

// AddTotals runs CheckVarianceTotals for one summary record.
func (r *Report) AddTotals(summary variance.VarianceRecord, parts []variance.VarianceRecord) {
	check := CheckVarianceTotals(summary, parts)
	r.Totals = append(r.Totals, check)
	if !check.IsBalanced {
		r.fail("totals " + summary.EntityName)
	}
}

// AddOutliers keeps only the records flagged by CheckForOutlier. Outliers are
// warnings and do not fail the report.
func (r *Report) AddOutliers(records []variance.VarianceRecord, metric variance.Metric, thresholdPct float64) {
	for _, rec := range records {
		if check := CheckForOutlier(rec, metric, thresholdPct); check.IsOutlier {
			r.Outliers = append(r.Outliers, check)
		}
	}
}

func (r *Report) fail(name string) {
	r.AllPassed = false
	r.FailedChecks = append(r.FailedChecks, name)
}
