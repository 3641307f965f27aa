// Package normalize turns the heterogeneous sector payloads produced by the
// backend into uniform models.SectorRecord values.
//
// Each payload shape has its own struct and its own conversion; Decode picks
// the struct from an explicit Shape tag instead of sniffing fields. Malformed
// money and quantity fields are coerced to zero at this boundary so that the
// aggregation stages can assume well-formed input.
package normalize

import (
	"hospital_dimensioning/pkg/models"

	"github.com/shopspring/decimal"
)

// Shape tags the wire format a sector payload arrived in.
type Shape string

const (
	ShapeInternation Shape = "internacao"
	ShapeAssistance  Shape = "assistencia"
	ShapeBaseline    Shape = "baseline"
	ShapeProjected   Shape = "projetado"
	ShapeNormalized  Shape = "normalizado"
)

// Variant is one decoded sector payload. The set of variants is closed.
type Variant interface {
	Shape() Shape
	toRecord() (models.SectorRecord, int)
}

// =============================================================================
// INTERNATION (inpatient) SECTOR
// =============================================================================

// InternationSector is a live inpatient sector with beds and a flat staff list.
type InternationSector struct {
	ID        ID                     `json:"id"`
	Name      string                 `json:"nome"`
	Cost      Money                  `json:"custoTotal"`
	BedCount  Count                  `json:"quantidadeLeitos"`
	BedStatus *RawBedStatus          `json:"leitosStatus"`
	Staff     List[InternationStaff] `json:"equipe"`
}

// RawBedStatus holds bed counts per classification status.
type RawBedStatus struct {
	Evaluated Count `json:"avaliados"`
	Vacant    Count `json:"vagos"`
	Inactive  Count `json:"inativos"`
}

// InternationStaff nests the role descriptor under "cargo".
type InternationStaff struct {
	Role struct {
		ID   ID     `json:"id"`
		Name string `json:"nome"`
	} `json:"cargo"`
	Quantity Count `json:"quantidade"`
}

func (s InternationSector) Shape() Shape { return ShapeInternation }

func (s InternationSector) toRecord() (models.SectorRecord, int) {
	defects := boolInt(s.Cost.Defect) + boolInt(s.BedCount.Defect)

	roles := newRoleAccumulator()
	for _, e := range s.Staff {
		roles.add(string(e.Role.ID), e.Role.Name, e.Quantity.N)
		defects += boolInt(e.Quantity.Defect)
	}

	rec := models.SectorRecord{
		ID:         CanonicalID(string(s.ID)),
		Name:       s.Name,
		Kind:       models.SectorInternation,
		CostAmount: s.Cost.Amount,
		Staff:      roles.entries(),
		BedCount:   s.BedCount.N,
	}
	if s.BedStatus != nil {
		rec.BedStatus = &models.BedStatus{
			Evaluated: s.BedStatus.Evaluated.N,
			Vacant:    s.BedStatus.Vacant.N,
			Inactive:  s.BedStatus.Inactive.N,
		}
		defects += boolInt(s.BedStatus.Evaluated.Defect) +
			boolInt(s.BedStatus.Vacant.Defect) +
			boolInt(s.BedStatus.Inactive.Defect)
	}
	return rec, defects
}

// =============================================================================
// ASSISTANCE SECTOR (staff grouped by sítio funcional)
// =============================================================================

// AssistanceSector is a live non-inpatient sector whose staff is split across
// functional sites.
type AssistanceSector struct {
	ID    ID                   `json:"id"`
	Name  string               `json:"nome"`
	Cost  Money                `json:"custoTotal"`
	Sites List[FunctionalSite] `json:"sitiosFuncionais"`
}

// FunctionalSite is one sítio funcional and the roles allocated to it.
type FunctionalSite struct {
	ID    ID             `json:"id"`
	Name  string         `json:"nome"`
	Roles List[SiteRole] `json:"cargos"`
}

// SiteRole is a role allocation inside a functional site.
type SiteRole struct {
	RoleID   ID     `json:"cargoId"`
	RoleName string `json:"nomeCargo"`
	Quantity Count  `json:"quantidade"`
}

func (s AssistanceSector) Shape() Shape { return ShapeAssistance }

func (s AssistanceSector) toRecord() (models.SectorRecord, int) {
	defects := boolInt(s.Cost.Defect)

	// The same role in several sites rolls up into one entry.
	roles := newRoleAccumulator()
	for _, site := range s.Sites {
		for _, r := range site.Roles {
			roles.add(string(r.RoleID), r.RoleName, r.Quantity.N)
			defects += boolInt(r.Quantity.Defect)
		}
	}

	return models.SectorRecord{
		ID:         CanonicalID(string(s.ID)),
		Name:       s.Name,
		Kind:       models.SectorAssistance,
		CostAmount: s.Cost.Amount,
		Staff:      roles.entries(),
	}, defects
}

// =============================================================================
// BASELINE SNAPSHOT SECTOR
// =============================================================================

// BaselineSector is a sector as frozen inside a baseline snapshot.
type BaselineSector struct {
	ID       ID                 `json:"setorId"`
	Name     string             `json:"setorNome"`
	Type     string             `json:"tipo"`
	Cost     Money              `json:"custo"`
	BedCount Count              `json:"quantidadeLeitos"`
	Team     List[BaselineRole] `json:"equipe"`
}

// BaselineRole is one role line of a snapshot.
type BaselineRole struct {
	RoleID   ID     `json:"cargoId"`
	RoleName string `json:"cargoNome"`
	Quantity Count  `json:"quantidade"`
}

func (s BaselineSector) Shape() Shape { return ShapeBaseline }

func (s BaselineSector) toRecord() (models.SectorRecord, int) {
	defects := boolInt(s.Cost.Defect) + boolInt(s.BedCount.Defect)

	roles := newRoleAccumulator()
	for _, r := range s.Team {
		roles.add(string(r.RoleID), r.RoleName, r.Quantity.N)
		defects += boolInt(r.Quantity.Defect)
	}

	return models.SectorRecord{
		ID:         CanonicalID(string(s.ID)),
		Name:       s.Name,
		Kind:       sectorKind(s.Type),
		CostAmount: s.Cost.Amount,
		Staff:      roles.entries(),
		BedCount:   s.BedCount.N,
	}, defects
}

// =============================================================================
// PROJECTED FINAL SECTOR
// =============================================================================

// ProjectedSector is a unit of the projected (target) state. Staffing is
// expressed per role as projetadoFinal.
type ProjectedSector struct {
	UnitID   ID                  `json:"unidadeId"`
	UnitName string              `json:"unidadeNome"`
	Type     string              `json:"tipo"`
	Cost     Money               `json:"custoProjetado"`
	Roles    List[ProjectedRole] `json:"cargos"`
}

// ProjectedRole carries the current and final projected count of a role.
type ProjectedRole struct {
	RoleID         ID     `json:"cargoId"`
	RoleName       string `json:"cargoNome"`
	Current        Count  `json:"atual"`
	ProjectedFinal Count  `json:"projetadoFinal"`
}

func (s ProjectedSector) Shape() Shape { return ShapeProjected }

func (s ProjectedSector) toRecord() (models.SectorRecord, int) {
	defects := boolInt(s.Cost.Defect)

	roles := newRoleAccumulator()
	for _, r := range s.Roles {
		roles.add(string(r.RoleID), r.RoleName, r.ProjectedFinal.N)
		defects += boolInt(r.ProjectedFinal.Defect)
	}

	return models.SectorRecord{
		ID:         CanonicalID(string(s.UnitID)),
		Name:       s.UnitName,
		Kind:       sectorKind(s.Type),
		CostAmount: s.Cost.Amount,
		Staff:      roles.entries(),
	}, defects
}

// =============================================================================
// ALREADY NORMALIZED
// =============================================================================

// Normalized wraps a record that is already in the uniform shape, so that
// normalization can be applied to its own output.
type Normalized struct {
	models.SectorRecord
}

func (n Normalized) Shape() Shape { return ShapeNormalized }

func (n Normalized) toRecord() (models.SectorRecord, int) {
	rec := n.SectorRecord.Clone()
	rec.ID = CanonicalID(rec.ID)

	defects := 0
	if rec.CostAmount.IsNegative() {
		rec.CostAmount = decimal.Zero
		defects++
	}

	roles := newRoleAccumulator()
	for _, e := range rec.Staff {
		q := e.Quantity
		if q < 0 {
			q = 0
			defects++
		}
		roles.add(e.RoleID, e.RoleName, q)
	}
	rec.Staff = roles.entries()
	return rec, defects
}

func sectorKind(t string) models.SectorKind {
	if t == string(models.SectorInternation) {
		return models.SectorInternation
	}
	if t == string(models.SectorAssistance) {
		return models.SectorAssistance
	}
	return ""
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
