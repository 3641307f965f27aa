package variance

import (
	"strings"

	"hospital_dimensioning/pkg/core/normalize"
	"hospital_dimensioning/pkg/models"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COMPARISON
// =============================================================================

// ComputeVariance compares a hospital's Baseline sectors to its Projetado
// units and carries the live Atual values of each sector along.
// Sectors are matched by canonical id; a sector missing on one side counts
// as zero there.
func ComputeVariance(baseline, current []models.SectorRecord, projected []normalize.ProjectedSector) []VarianceRecord {
	target := make([]models.SectorRecord, 0, len(projected))
	for _, p := range projected {
		target = append(target, normalize.Normalize(p, models.StateProjected))
	}
	return CompareWithCurrent(baseline, current, target)
}

// CompareWithCurrent is ComputeVariance over already-normalized projected
// records.
func CompareWithCurrent(baseline, current, projected []models.SectorRecord) []VarianceRecord {
	t := newSectorTable()
	t.addAll(baseline, refSide)
	t.addAll(current, currentSide)
	t.addAll(projected, targetSide)
	return t.records(models.StateBaseline, models.StateProjected, true)
}

// Compare matches reference and target sectors by canonical id and returns one
// sector record per id, with role records nested, in first-seen order.
// Duplicate ids on one side are summed.
func Compare(reference, target []models.SectorRecord, referenceState, targetState models.StateKind) []VarianceRecord {
	t := newSectorTable()
	t.addAll(reference, refSide)
	t.addAll(target, targetSide)
	return t.records(referenceState, targetState, false)
}

// =============================================================================
// ACCUMULATION
// =============================================================================

type side int

const (
	refSide side = iota
	targetSide
	currentSide
	sideCount
)

type roleAcc struct {
	id, name string
	qty      [sideCount]int64
}

type sectorAcc struct {
	id, name, hospital string
	cost               [sideCount]decimal.Decimal
	roleIndex          map[string]int
	roles              []*roleAcc
	bedCount           int
	beds               *models.BedStatus
	bedSide            side
}

type sectorTable struct {
	index map[string]int
	list  []*sectorAcc
}

func newSectorTable() *sectorTable {
	return &sectorTable{index: make(map[string]int)}
}

// Sectors are keyed by hospital and id so that aggregated views spanning
// several hospitals do not merge equally numbered sectors.
// sectorKey identifies a sector within its hospital. Sectors without an id
// fall back to their name, kept apart from ids by a separate namespace.
func sectorKey(s models.SectorRecord) string {
	if id := normalize.CanonicalID(s.ID); id != "" {
		return s.HospitalName + "\x00id\x00" + id
	}
	return s.HospitalName + "\x00name\x00" + strings.TrimSpace(s.Name)
}

func (t *sectorTable) addAll(sectors []models.SectorRecord, sd side) {
	for _, s := range sectors {
		t.add(s, sd)
	}
}

func (t *sectorTable) add(s models.SectorRecord, sd side) {
	key := sectorKey(s)
	i, ok := t.index[key]
	if !ok {
		i = len(t.list)
		t.index[key] = i
		t.list = append(t.list, &sectorAcc{
			id:        normalize.CanonicalID(s.ID),
			name:      s.Name,
			hospital:  s.HospitalName,
			roleIndex: make(map[string]int),
		})
	}
	acc := t.list[i]
	if acc.name == "" {
		acc.name = s.Name
	}
	acc.cost[sd] = acc.cost[sd].Add(s.CostAmount)

	for _, e := range s.Staff {
		acc.addRole(e, sd)
	}

	// Bed status comes from the live state when present, otherwise from the
	// first side that reports one.
	if s.BedStatus != nil && (acc.beds == nil || (sd == currentSide && acc.bedSide != currentSide)) {
		b := *s.BedStatus
		acc.beds = &b
		acc.bedCount = s.BedCount
		acc.bedSide = sd
	} else if s.BedStatus != nil && sd == acc.bedSide {
		acc.beds.Evaluated += s.BedStatus.Evaluated
		acc.beds.Vacant += s.BedStatus.Vacant
		acc.beds.Inactive += s.BedStatus.Inactive
		acc.bedCount += s.BedCount
	}
}

func (a *sectorAcc) addRole(e models.StaffEntry, sd side) {
	id := normalize.CanonicalID(e.RoleID)
	if id == "" {
		id = e.RoleName
	}
	i, ok := a.roleIndex[id]
	if !ok {
		i = len(a.roles)
		a.roleIndex[id] = i
		a.roles = append(a.roles, &roleAcc{id: id, name: e.RoleName})
	}
	r := a.roles[i]
	if r.name == "" {
		r.name = e.RoleName
	}
	r.qty[sd] += int64(e.Quantity)
}

func (t *sectorTable) records(refState, targetState models.StateKind, withCurrent bool) []VarianceRecord {
	out := make([]VarianceRecord, 0, len(t.list))
	for _, acc := range t.list {
		out = append(out, acc.record(refState, targetState, withCurrent))
	}
	return out
}

func (a *sectorAcc) record(refState, targetState models.StateKind, withCurrent bool) VarianceRecord {
	var qty [sideCount]int64
	roles := make([]VarianceRecord, 0, len(a.roles))
	for _, r := range a.roles {
		for sd := range qty {
			qty[sd] += r.qty[sd]
		}
		rec := VarianceRecord{
			EntityID:     r.id,
			EntityName:   r.name,
			HospitalName: a.hospital,
			Granularity:  GranularityRole,
			Reference:    refState,
			Target:       targetState,
			Quantity:     NewMeasure(decimal.NewFromInt(r.qty[refSide]), decimal.NewFromInt(r.qty[targetSide])),
			Cost:         NewMeasure(decimal.Zero, decimal.Zero),
		}
		if withCurrent {
			rec.Current = &Values{Quantity: decimal.NewFromInt(r.qty[currentSide]), Cost: decimal.Zero}
		}
		roles = append(roles, rec)
	}

	rec := VarianceRecord{
		EntityID:     a.id,
		EntityName:   a.name,
		HospitalName: a.hospital,
		Granularity:  GranularitySector,
		Reference:    refState,
		Target:       targetState,
		Quantity:     NewMeasure(decimal.NewFromInt(qty[refSide]), decimal.NewFromInt(qty[targetSide])),
		Cost:         NewMeasure(a.cost[refSide], a.cost[targetSide]),
		Roles:        roles,
	}
	if withCurrent {
		rec.Current = &Values{Quantity: decimal.NewFromInt(qty[currentSide]), Cost: a.cost[currentSide]}
	}
	if a.beds != nil {
		occ := NewOccupancy(a.bedCount, *a.beds)
		rec.Occupancy = &occ
	}
	return rec
}
