package variance

import (
	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/models"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ROLL-UPS
// =============================================================================

// Totals sums the reference and target sides of records and recomputes the
// deltas from the sums.
func Totals(records []VarianceRecord) (quantity, cost Measure) {
	var qRef, qTgt, cRef, cTgt decimal.Decimal
	for _, r := range records {
		qRef = qRef.Add(r.Quantity.Reference)
		qTgt = qTgt.Add(r.Quantity.Target)
		cRef = cRef.Add(r.Cost.Reference)
		cTgt = cTgt.Add(r.Cost.Target)
	}
	return NewMeasure(qRef, qTgt), NewMeasure(cRef, cTgt)
}

// RollupRoles merges the role records nested in sector records by role id,
// across sectors and hospitals, in first-seen order.
func RollupRoles(sectors []VarianceRecord) []VarianceRecord {
	type acc struct {
		rec        VarianceRecord
		ref, tgt   decimal.Decimal
		cur        decimal.Decimal
		hasCurrent bool
	}
	index := make(map[string]int)
	var list []*acc
	for _, s := range sectors {
		for _, r := range s.Roles {
			i, ok := index[r.EntityID]
			if !ok {
				i = len(list)
				index[r.EntityID] = i
				list = append(list, &acc{rec: VarianceRecord{
					EntityID:    r.EntityID,
					EntityName:  r.EntityName,
					Granularity: GranularityRole,
					Reference:   r.Reference,
					Target:      r.Target,
				}})
			}
			a := list[i]
			a.ref = a.ref.Add(r.Quantity.Reference)
			a.tgt = a.tgt.Add(r.Quantity.Target)
			if r.Current != nil {
				a.hasCurrent = true
				a.cur = a.cur.Add(r.Current.Quantity)
			}
		}
	}

	out := make([]VarianceRecord, 0, len(list))
	for _, a := range list {
		rec := a.rec
		rec.Quantity = NewMeasure(a.ref, a.tgt)
		rec.Cost = NewMeasure(decimal.Zero, decimal.Zero)
		if a.hasCurrent {
			rec.Current = &Values{Quantity: a.cur, Cost: decimal.Zero}
		}
		out = append(out, rec)
	}
	return out
}

// Summarize collapses sector records into one entity record. Occupancy is
// summed over the sectors that report beds and roles are rolled up.
func Summarize(entityID, entityName string, sectors []VarianceRecord) VarianceRecord {
	qty, cost := Totals(sectors)
	rec := VarianceRecord{
		EntityID:    entityID,
		EntityName:  entityName,
		Granularity: GranularityEntity,
		Quantity:    qty,
		Cost:        cost,
		Roles:       RollupRoles(sectors),
	}

	var cur Values
	hasCurrent := false
	var beds models.BedStatus
	bedCount, hasBeds := 0, false
	for _, s := range sectors {
		rec.Reference, rec.Target = s.Reference, s.Target
		if s.Current != nil {
			hasCurrent = true
			cur.Quantity = cur.Quantity.Add(s.Current.Quantity)
			cur.Cost = cur.Cost.Add(s.Current.Cost)
		}
		if s.Occupancy != nil {
			hasBeds = true
			bedCount += s.Occupancy.BedCount
			beds.Evaluated += s.Occupancy.Evaluated
			beds.Vacant += s.Occupancy.Vacant
			beds.Inactive += s.Occupancy.Inactive
		}
	}
	if hasCurrent {
		rec.Current = &cur
	}
	if hasBeds {
		occ := NewOccupancy(bedCount, beds)
		rec.Occupancy = &occ
	}
	return rec
}

// CompareViews compares two aggregations of the same level, matching views by
// entity id. Each result is an entity record summarizing its sectors.
// A view present on one side only is compared against an empty view.
func CompareViews(reference, target []hierarchy.AggregatedView, referenceState, targetState models.StateKind) []VarianceRecord {
	targets := make(map[string]hierarchy.AggregatedView, len(target))
	for _, v := range target {
		targets[v.EntityID] = v
	}

	out := make([]VarianceRecord, 0, len(reference))
	seen := make(map[string]bool, len(reference))
	for _, ref := range reference {
		seen[ref.EntityID] = true
		tgt := targets[ref.EntityID]
		out = append(out, compareView(ref.EntityID, ref.EntityName, ref.Sectors(), tgt.Sectors(), referenceState, targetState))
	}
	for _, tgt := range target {
		if seen[tgt.EntityID] {
			continue
		}
		out = append(out, compareView(tgt.EntityID, tgt.EntityName, nil, tgt.Sectors(), referenceState, targetState))
	}
	return out
}

func compareView(id, name string, ref, tgt []models.SectorRecord, refState, tgtState models.StateKind) VarianceRecord {
	rec := Summarize(id, name, Compare(ref, tgt, refState, tgtState))
	rec.Reference, rec.Target = refState, tgtState
	return rec
}
