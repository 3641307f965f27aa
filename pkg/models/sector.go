// Package models holds the data shapes shared by every stage of the
// dimensioning engine: sectors, their staff, and the state they were captured in.
package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StateKind names the point in time a sector record was captured in.
type StateKind string

const (
	StateCurrent   StateKind = "atual"
	StateBaseline  StateKind = "baseline"
	StateProjected StateKind = "projetado"
)

// ParseStateKind accepts the Portuguese state names used by the backend plus
// their English aliases.
func ParseStateKind(s string) (StateKind, error) {
	switch s {
	case "atual", "current":
		return StateCurrent, nil
	case "baseline":
		return StateBaseline, nil
	case "projetado", "projected":
		return StateProjected, nil
	}
	return "", fmt.Errorf("unknown state %q", s)
}

// SectorKind distinguishes inpatient (internação) sectors, which carry beds,
// from assistance sectors, which group staff by functional site.
type SectorKind string

const (
	SectorInternation SectorKind = "internacao"
	SectorAssistance  SectorKind = "assistencia"
)

// StaffEntry is the headcount of one role (cargo) inside a sector.
type StaffEntry struct {
	RoleID   string `json:"roleId"`
	RoleName string `json:"roleName"`
	Quantity int    `json:"quantity"`
}

// BedStatus counts beds by their classification status. Only internation
// sectors have one.
type BedStatus struct {
	Evaluated int `json:"evaluated"`
	Vacant    int `json:"vacant"`
	Inactive  int `json:"inactive"`
}

// SectorRecord is one organizational sector in one state.
// CostAmount is never negative and Headcount is the sum of Staff quantities.
type SectorRecord struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	HospitalName string          `json:"hospitalName,omitempty"`
	Kind         SectorKind      `json:"kind,omitempty"`
	State        StateKind       `json:"state,omitempty"`
	CostAmount   decimal.Decimal `json:"costAmount"`
	Staff        []StaffEntry    `json:"staff"`
	BedCount     int             `json:"bedCount,omitempty"`
	BedStatus    *BedStatus      `json:"bedStatus,omitempty"`
}

// Headcount returns the total staff of the sector.
func (s SectorRecord) Headcount() int {
	total := 0
	for _, e := range s.Staff {
		total += e.Quantity
	}
	return total
}

// QualifiedName prefixes the sector name with its hospital so that sectors
// sharing a name across hospitals stay distinguishable.
func (s SectorRecord) QualifiedName() string {
	if s.HospitalName == "" {
		return s.Name
	}
	return s.HospitalName + " - " + s.Name
}

// Clone returns a deep copy; Staff and BedStatus are not shared.
func (s SectorRecord) Clone() SectorRecord {
	out := s
	if s.Staff != nil {
		out.Staff = make([]StaffEntry, len(s.Staff))
		copy(out.Staff, s.Staff)
	}
	if s.BedStatus != nil {
		bs := *s.BedStatus
		out.BedStatus = &bs
	}
	return out
}

// CloneSectors deep-copies a sector slice. A nil input yields nil.
func CloneSectors(in []SectorRecord) []SectorRecord {
	if in == nil {
		return nil
	}
	out := make([]SectorRecord, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

// SumCost adds up the cost of every sector.
func SumCost(sectors []SectorRecord) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sectors {
		total = total.Add(s.CostAmount)
	}
	return total
}

// SumHeadcount adds up the headcount of every sector.
func SumHeadcount(sectors []SectorRecord) int {
	total := 0
	for _, s := range sectors {
		total += s.Headcount()
	}
	return total
}
