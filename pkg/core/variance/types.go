// Package variance compares staffing states (Baseline, Atual, Projetado) of the
// same sectors and reports quantity and cost deltas at role, sector and
// entity granularity.
package variance

import (
	"hospital_dimensioning/pkg/models"

	"github.com/shopspring/decimal"
)

// Granularity of a variance record.
type Granularity string

const (
	GranularityRole   Granularity = "cargo"
	GranularitySector Granularity = "setor"
	GranularityEntity Granularity = "entidade"
)

// Metric selects which measure of a record is looked at.
type Metric string

const (
	MetricQuantity Metric = "quantidade"
	MetricCost     Metric = "custo"
)

// ParseMetric accepts the Portuguese metric names and their English aliases.
func ParseMetric(s string) (Metric, bool) {
	switch s {
	case "quantidade", "quantity":
		return MetricQuantity, true
	case "custo", "cost":
		return MetricCost, true
	}
	return "", false
}

// Measure is one compared value. Delta is Target - Reference and
// DeltaPercent is Delta as a percentage of Reference, or 0 when Reference is 0.
type Measure struct {
	Reference    decimal.Decimal `json:"reference"`
	Target       decimal.Decimal `json:"target"`
	Delta        decimal.Decimal `json:"delta"`
	DeltaPercent float64         `json:"deltaPercent"`
}

// NewMeasure derives Delta and DeltaPercent from the two compared values.
func NewMeasure(reference, target decimal.Decimal) Measure {
	return Measure{
		Reference:    reference,
		Target:       target,
		Delta:        target.Sub(reference),
		DeltaPercent: PercentChange(reference, target),
	}
}

// PercentChange is (target - reference) / reference * 100, defined as 0 when
// reference is 0 so that rankings never see NaN or Inf.
func PercentChange(reference, target decimal.Decimal) float64 {
	if reference.IsZero() {
		return 0
	}
	return target.Sub(reference).Div(reference).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// Values are the quantity and cost observed in a third state carried along a
// comparison (the live Atual state when comparing Baseline to Projetado).
type Values struct {
	Quantity decimal.Decimal `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

// Occupancy keeps the two occupancy percentages side by side:
// CapacityPercent is evaluated beds over the fixed bed count, ActivePercent is
// evaluated beds over beds that are not inactive.
type Occupancy struct {
	BedCount        int     `json:"bedCount"`
	Evaluated       int     `json:"evaluated"`
	Vacant          int     `json:"vacant"`
	Inactive        int     `json:"inactive"`
	CapacityPercent float64 `json:"capacityPercent"`
	ActivePercent   float64 `json:"activePercent"`
}

// NewOccupancy computes both occupancy percentages from bed counts.
func NewOccupancy(bedCount int, status models.BedStatus) Occupancy {
	o := Occupancy{
		BedCount:  bedCount,
		Evaluated: status.Evaluated,
		Vacant:    status.Vacant,
		Inactive:  status.Inactive,
	}
	if bedCount > 0 {
		o.CapacityPercent = float64(status.Evaluated) / float64(bedCount) * 100
	}
	if active := bedCount - status.Inactive; active > 0 {
		o.ActivePercent = float64(status.Evaluated) / float64(active) * 100
	}
	return o
}

// VarianceRecord is the comparison of one role, sector or entity between a
// Reference and a Target state.
type VarianceRecord struct {
	EntityID     string           `json:"entityId"`
	EntityName   string           `json:"entityName"`
	HospitalName string           `json:"hospitalName,omitempty"`
	Granularity  Granularity      `json:"granularity"`
	Reference    models.StateKind `json:"referenceState"`
	Target       models.StateKind `json:"targetState"`
	Quantity     Measure          `json:"quantity"`
	Cost         Measure          `json:"cost"`
	Current      *Values          `json:"current,omitempty"`
	Occupancy    *Occupancy       `json:"occupancy,omitempty"`
	Roles        []VarianceRecord `json:"roles,omitempty"`
}

// Measure returns the quantity or cost measure of the record.
func (r VarianceRecord) Measure(m Metric) Measure {
	if m == MetricQuantity {
		return r.Quantity
	}
	return r.Cost
}

// Label is the display name, prefixed by hospital when one is known.
func (r VarianceRecord) Label() string {
	if r.HospitalName == "" || r.HospitalName == r.EntityName {
		return r.EntityName
	}
	return r.HospitalName + " - " + r.EntityName
}
