package variance

import (
	"math"
	"testing"

	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/core/normalize"
	"hospital_dimensioning/pkg/models"

	"github.com/shopspring/decimal"
)

func sector(id, name string, cost int64, staff ...models.StaffEntry) models.SectorRecord {
	if staff == nil {
		staff = []models.StaffEntry{}
	}
	return models.SectorRecord{ID: id, Name: name, CostAmount: decimal.NewFromInt(cost), Staff: staff}
}

func role(id string, qty int) models.StaffEntry {
	return models.StaffEntry{RoleID: id, RoleName: id, Quantity: qty}
}

func decEq(t *testing.T, what string, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Errorf("%s = %s, want %d", what, got, want)
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		ref, tgt int64
		want     float64
	}{
		{"increase", 100, 150, 50},
		{"decrease", 200, 150, -25},
		{"unchanged", 80, 80, 0},
		{"zero reference", 0, 5, 0},
		{"both zero", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(decimal.NewFromInt(tt.ref), decimal.NewFromInt(tt.tgt))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PercentChange(%d, %d) = %v, want %v", tt.ref, tt.tgt, got, tt.want)
			}
		})
	}
}

func TestCompare_MatchesByID(t *testing.T) {
	ref := []models.SectorRecord{
		sector("6f1c2a8e-0000-4000-8000-000000000001", "UTI", 1000, role("enf", 2), role("tec", 3)),
		sector("s2", "Clinica", 500, role("enf", 1)),
	}
	tgt := []models.SectorRecord{
		sector(" 6F1C2A8E-0000-4000-8000-000000000001", "UTI Adulto", 1200, role("enf", 3), role("tec", 3)),
		sector("s3", "Pediatria", 300, role("med", 1)),
	}

	got := Compare(ref, tgt, models.StateBaseline, models.StateProjected)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	uti := got[0]
	if uti.EntityID != "6f1c2a8e-0000-4000-8000-000000000001" || uti.EntityName != "UTI" || uti.Granularity != GranularitySector {
		t.Errorf("first record = %+v", uti)
	}
	decEq(t, "uti cost delta", uti.Cost.Delta, 200)
	decEq(t, "uti quantity delta", uti.Quantity.Delta, 1)
	if math.Abs(uti.Cost.DeltaPercent-20) > 1e-9 {
		t.Errorf("uti cost percent = %v, want 20", uti.Cost.DeltaPercent)
	}
	if len(uti.Roles) != 2 || uti.Roles[0].EntityID != "enf" {
		t.Fatalf("uti roles = %+v", uti.Roles)
	}
	decEq(t, "enf delta", uti.Roles[0].Quantity.Delta, 1)

	// Missing on the target side counts as zero.
	decEq(t, "clinica target", got[1].Cost.Target, 0)
	decEq(t, "clinica delta", got[1].Cost.Delta, -500)

	// Missing on the reference side counts as zero; percent is defined as 0.
	decEq(t, "pediatria delta", got[2].Cost.Delta, 300)
	if got[2].Cost.DeltaPercent != 0 {
		t.Errorf("pediatria percent = %v, want 0", got[2].Cost.DeltaPercent)
	}
	if got[0].Reference != models.StateBaseline || got[0].Target != models.StateProjected {
		t.Errorf("states = %s -> %s", got[0].Reference, got[0].Target)
	}
}

func TestCompare_ZeroBaselineRole(t *testing.T) {
	ref := []models.SectorRecord{sector("s1", "UTI", 100)}
	tgt := []models.SectorRecord{sector("s1", "UTI", 100, role("enf", 5))}

	got := Compare(ref, tgt, models.StateBaseline, models.StateProjected)
	if len(got) != 1 || len(got[0].Roles) != 1 {
		t.Fatalf("got %+v", got)
	}
	r := got[0].Roles[0]
	decEq(t, "delta", r.Quantity.Delta, 5)
	if r.Quantity.DeltaPercent != 0 {
		t.Errorf("percent = %v, want 0", r.Quantity.DeltaPercent)
	}
}

func TestCompare_DuplicatesAccumulate(t *testing.T) {
	ref := []models.SectorRecord{
		sector("s1", "UTI", 100, role("enf", 1)),
		sector("s1", "UTI", 50, role("enf", 2)),
	}
	got := Compare(ref, nil, models.StateCurrent, models.StateProjected)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	decEq(t, "cost", got[0].Cost.Reference, 150)
	decEq(t, "quantity", got[0].Quantity.Reference, 3)
}

func TestCompare_MissingIDsMatchByName(t *testing.T) {
	ref := []models.SectorRecord{sector("", "UTI", 100), sector("", "Pediatria", 200)}
	tgt := []models.SectorRecord{sector("", "Pediatria", 100), sector("", " UTI ", 150)}

	got := Compare(ref, tgt, models.StateBaseline, models.StateProjected)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].EntityName != "UTI" || got[1].EntityName != "Pediatria" {
		t.Errorf("names = %q, %q", got[0].EntityName, got[1].EntityName)
	}
	decEq(t, "UTI ref", got[0].Cost.Reference, 100)
	decEq(t, "UTI target", got[0].Cost.Target, 150)
	decEq(t, "Pediatria ref", got[1].Cost.Reference, 200)
	decEq(t, "Pediatria target", got[1].Cost.Target, 100)
}

func TestCompare_NameFallbackDoesNotMatchID(t *testing.T) {
	ref := []models.SectorRecord{sector("uti", "UTI", 100)}
	tgt := []models.SectorRecord{sector("", "uti", 100)}

	got := Compare(ref, tgt, models.StateBaseline, models.StateProjected)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestCompare_SameIDDifferentHospitals(t *testing.T) {
	a := sector("uti", "UTI", 100, role("enf", 1))
	a.HospitalName = "Hospital A"
	b := sector("uti", "UTI", 200, role("enf", 2))
	b.HospitalName = "Hospital B"

	got := Compare([]models.SectorRecord{a, b}, []models.SectorRecord{b}, models.StateBaseline, models.StateProjected)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Label() != "Hospital A - UTI" {
		t.Errorf("label = %q", got[0].Label())
	}
	decEq(t, "A delta", got[0].Cost.Delta, -100)
	decEq(t, "B delta", got[1].Cost.Delta, 0)
}

func TestComputeVariance_CarriesCurrent(t *testing.T) {
	baseline := []models.SectorRecord{sector("s1", "UTI", 1000, role("enf", 2))}
	current := []models.SectorRecord{sector("s1", "UTI", 1100, role("enf", 3))}
	current[0].BedCount = 10
	current[0].BedStatus = &models.BedStatus{Evaluated: 6, Vacant: 2, Inactive: 2}

	projected := []normalize.ProjectedSector{{
		UnitID:   "s1",
		UnitName: "UTI",
		Cost:     normalize.Money{Amount: decimal.NewFromInt(1300)},
		Roles: normalize.List[normalize.ProjectedRole]{
			{RoleID: "enf", RoleName: "Enfermeiro", Current: normalize.Count{N: 3}, ProjectedFinal: normalize.Count{N: 4}},
		},
	}}

	got := ComputeVariance(baseline, current, projected)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	r := got[0]
	decEq(t, "cost delta", r.Cost.Delta, 300)
	decEq(t, "quantity delta", r.Quantity.Delta, 2)
	if r.Current == nil {
		t.Fatal("current values missing")
	}
	decEq(t, "current cost", r.Current.Cost, 1100)
	decEq(t, "current quantity", r.Current.Quantity, 3)
	if r.Occupancy == nil {
		t.Fatal("occupancy missing")
	}
	if math.Abs(r.Occupancy.CapacityPercent-60) > 1e-9 {
		t.Errorf("capacity = %v, want 60", r.Occupancy.CapacityPercent)
	}
	if math.Abs(r.Occupancy.ActivePercent-75) > 1e-9 {
		t.Errorf("active = %v, want 75", r.Occupancy.ActivePercent)
	}
	if r.Roles[0].Current == nil {
		t.Error("role current values missing")
	}
}

func TestNewOccupancy_NoBeds(t *testing.T) {
	o := NewOccupancy(0, models.BedStatus{})
	if o.CapacityPercent != 0 || o.ActivePercent != 0 {
		t.Errorf("occupancy = %+v, want zero percentages", o)
	}
	o = NewOccupancy(4, models.BedStatus{Evaluated: 0, Inactive: 4})
	if o.ActivePercent != 0 {
		t.Errorf("active = %v, want 0 when every bed is inactive", o.ActivePercent)
	}
}

func TestCompare_DoesNotMutateInput(t *testing.T) {
	ref := []models.SectorRecord{sector("s1", "UTI", 100, role("enf", 1))}
	tgt := []models.SectorRecord{sector("s1", "UTI", 200, role("enf", 2))}
	Compare(ref, tgt, models.StateBaseline, models.StateProjected)
	if ref[0].Staff[0].Quantity != 1 || !tgt[0].CostAmount.Equal(decimal.NewFromInt(200)) {
		t.Error("input sectors were modified")
	}
}

// =============================================================================
// ROLL-UPS
// =============================================================================

func TestTotals(t *testing.T) {
	records := Compare(
		[]models.SectorRecord{sector("a", "A", 1000, role("enf", 2)), sector("b", "B", 2000, role("enf", 3))},
		[]models.SectorRecord{sector("a", "A", 1200, role("enf", 2)), sector("b", "B", 1800, role("enf", 4))},
		models.StateBaseline, models.StateProjected,
	)
	qty, cost := Totals(records)
	decEq(t, "cost reference", cost.Reference, 3000)
	decEq(t, "cost target", cost.Target, 3000)
	decEq(t, "cost delta", cost.Delta, 0)
	decEq(t, "quantity delta", qty.Delta, 1)
}

func TestRollupRoles(t *testing.T) {
	records := Compare(
		[]models.SectorRecord{
			sector("a", "A", 0, role("enf", 2), role("tec", 1)),
			sector("b", "B", 0, role("enf", 3)),
		},
		[]models.SectorRecord{
			sector("a", "A", 0, role("enf", 1)),
			sector("b", "B", 0, role("enf", 3), role("tec", 2)),
		},
		models.StateBaseline, models.StateProjected,
	)
	roles := RollupRoles(records)
	if len(roles) != 2 {
		t.Fatalf("len = %d, want 2", len(roles))
	}
	if roles[0].EntityID != "enf" || roles[1].EntityID != "tec" {
		t.Errorf("order = %s, %s", roles[0].EntityID, roles[1].EntityID)
	}
	decEq(t, "enf reference", roles[0].Quantity.Reference, 5)
	decEq(t, "enf delta", roles[0].Quantity.Delta, -1)
	decEq(t, "tec delta", roles[1].Quantity.Delta, 1)
	if roles[0].Granularity != GranularityRole {
		t.Errorf("granularity = %s", roles[0].Granularity)
	}
}

func TestCompareViews(t *testing.T) {
	ref := []hierarchy.AggregatedView{
		{EntityID: "rede", EntityName: "Rede", Internation: []models.SectorRecord{sector("a", "A", 1000, role("enf", 2))}},
		{EntityID: "old", EntityName: "Old", Assistance: []models.SectorRecord{sector("x", "X", 100)}},
	}
	tgt := []hierarchy.AggregatedView{
		{EntityID: "rede", EntityName: "Rede", Internation: []models.SectorRecord{sector("a", "A", 1500, role("enf", 3))}},
		{EntityID: "new", EntityName: "New", Assistance: []models.SectorRecord{sector("y", "Y", 50)}},
	}

	got := CompareViews(ref, tgt, models.StateBaseline, models.StateCurrent)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Granularity != GranularityEntity || got[0].EntityID != "rede" {
		t.Errorf("first = %+v", got[0])
	}
	decEq(t, "rede cost delta", got[0].Cost.Delta, 500)
	decEq(t, "rede quantity delta", got[0].Quantity.Delta, 1)
	if len(got[0].Roles) != 1 {
		t.Errorf("rede roles = %d, want 1", len(got[0].Roles))
	}
	decEq(t, "old delta", got[1].Cost.Delta, -100)
	decEq(t, "new delta", got[2].Cost.Delta, 50)
	if got[2].Reference != models.StateBaseline || got[2].Target != models.StateCurrent {
		t.Errorf("states = %s -> %s", got[2].Reference, got[2].Target)
	}
}

func TestSummarize_Occupancy(t *testing.T) {
	a := sector("a", "A", 0)
	a.BedCount, a.BedStatus = 10, &models.BedStatus{Evaluated: 5}
	b := sector("b", "B", 0)
	b.BedCount, b.BedStatus = 10, &models.BedStatus{Evaluated: 10, Inactive: 0}

	rec := Summarize("h", "H", Compare([]models.SectorRecord{a, b}, nil, models.StateCurrent, models.StateProjected))
	if rec.Occupancy == nil {
		t.Fatal("occupancy missing")
	}
	if math.Abs(rec.Occupancy.CapacityPercent-75) > 1e-9 {
		t.Errorf("capacity = %v, want 75", rec.Occupancy.CapacityPercent)
	}
}
