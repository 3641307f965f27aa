package ranking

import (
	"errors"
	"fmt"

	"hospital_dimensioning/pkg/core/variance"

	"github.com/shopspring/decimal"
)

// ErrReconciliation is matched by every *ReconciliationError.
var ErrReconciliation = errors.New("waterfall does not reconcile")

// ReconciliationError reports a waterfall whose steps do not add up. It marks
// a defect in the computation, never dirty input.
type ReconciliationError struct {
	Step     string
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("waterfall does not reconcile at %q: expected %s, got %s", e.Step, e.Expected, e.Actual)
}

func (e *ReconciliationError) Unwrap() error { return ErrReconciliation }

// Delta is one itemized change between the start and end totals.
type Delta struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// WaterfallStep is one bar of a decomposition. Totals span [0, value]; delta
// steps span [before, before+value] with the sign preserved.
type WaterfallStep struct {
	Name    string             `json:"name"`
	Value   decimal.Decimal    `json:"value"`
	Range   [2]decimal.Decimal `json:"cumulativeRange"`
	IsTotal bool               `json:"isTotal"`
}

// BuildWaterfall decomposes start into start + deltas. The result always has a
// start and an end total, so no deltas yields two steps.
func BuildWaterfall(start decimal.Decimal, startLabel string, deltas []Delta, endLabel string) ([]WaterfallStep, error) {
	steps := make([]WaterfallStep, 0, len(deltas)+2)
	steps = append(steps, WaterfallStep{
		Name:    startLabel,
		Value:   start,
		Range:   [2]decimal.Decimal{decimal.Zero, start},
		IsTotal: true,
	})

	cumulative := start
	for _, d := range deltas {
		next := cumulative.Add(d.Value)
		steps = append(steps, WaterfallStep{
			Name:  d.Label,
			Value: d.Value,
			Range: [2]decimal.Decimal{cumulative, next},
		})
		cumulative = next
	}

	steps = append(steps, WaterfallStep{
		Name:    endLabel,
		Value:   cumulative,
		Range:   [2]decimal.Decimal{decimal.Zero, cumulative},
		IsTotal: true,
	})

	if err := CheckChain(steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// BuildWaterfallTo is BuildWaterfall that also requires the end total to equal
// expectedEnd.
func BuildWaterfallTo(start decimal.Decimal, startLabel string, deltas []Delta, endLabel string, expectedEnd decimal.Decimal) ([]WaterfallStep, error) {
	steps, err := BuildWaterfall(start, startLabel, deltas, endLabel)
	if err != nil {
		return nil, err
	}
	end := steps[len(steps)-1]
	if !end.Value.Equal(expectedEnd) {
		return nil, &ReconciliationError{Step: end.Name, Expected: expectedEnd, Actual: end.Value}
	}
	return steps, nil
}

// VarianceWaterfall walks from the summed reference to the summed target of
// records, one step per record with a non-zero delta, and verifies that the
// end total equals the summed target.
func VarianceWaterfall(records []variance.VarianceRecord, metric variance.Metric, startLabel, endLabel string) ([]WaterfallStep, error) {
	start, end := decimal.Zero, decimal.Zero
	deltas := make([]Delta, 0, len(records))
	for _, r := range records {
		m := r.Measure(metric)
		start = start.Add(m.Reference)
		end = end.Add(m.Target)
		if m.Delta.IsZero() {
			continue
		}
		deltas = append(deltas, Delta{Label: r.Label(), Value: m.Delta})
	}
	return BuildWaterfallTo(start, startLabel, deltas, endLabel, end)
}

// CheckChain verifies that every delta step starts where the previous step
// ended and that the end total equals start plus the deltas.
func CheckChain(steps []WaterfallStep) error {
	if len(steps) < 2 {
		return fmt.Errorf("%w: %d steps, need a start and an end total", ErrReconciliation, len(steps))
	}
	first, last := steps[0], steps[len(steps)-1]
	cumulative := first.Value
	for _, s := range steps[1 : len(steps)-1] {
		if !s.Range[0].Equal(cumulative) {
			return &ReconciliationError{Step: s.Name, Expected: cumulative, Actual: s.Range[0]}
		}
		cumulative = cumulative.Add(s.Value)
		if !s.Range[1].Equal(cumulative) {
			return &ReconciliationError{Step: s.Name, Expected: cumulative, Actual: s.Range[1]}
		}
	}
	if !last.Value.Equal(cumulative) {
		return &ReconciliationError{Step: last.Name, Expected: cumulative, Actual: last.Value}
	}
	return nil
}
