// Package hierarchy folds normalized sectors up the organizational tree:
// Sector → Hospital → Group / Region / Network.
package hierarchy

import (
	"fmt"
	"hospital_dimensioning/pkg/models"

	"github.com/shopspring/decimal"
)

// Level is the granularity an aggregation is requested at.
type Level string

const (
	LevelHospital Level = "hospital"
	LevelGroup    Level = "grupo"
	LevelRegion   Level = "regiao"
	LevelNetwork  Level = "rede"
)

// ParseLevel validates a level name.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelHospital, LevelGroup, LevelRegion, LevelNetwork:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown aggregation level %q", s)
}

// Kind of an organizational entity. Parent kinds share their names with the
// aggregation levels.
type Kind string

const (
	KindHospital Kind = "hospital"
	KindGroup    Kind = "grupo"
	KindRegion   Kind = "regiao"
	KindNetwork  Kind = "rede"
)

// Entity is a node of the organizational tree. Hospitals own sectors
// directly; networks, groups and regions own child entities.
type Entity struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Kind        Kind                  `json:"kind"`
	Internation []models.SectorRecord `json:"internation,omitempty"`
	Assistance  []models.SectorRecord `json:"assistance,omitempty"`
	Children    []Entity              `json:"children,omitempty"`
}

// AggregatedView is the flattened sector list of one entity at one level.
type AggregatedView struct {
	EntityID    string                `json:"entityId"`
	EntityName  string                `json:"entityName"`
	Level       Level                 `json:"level"`
	Hospitals   []string              `json:"hospitals"`
	Internation []models.SectorRecord `json:"internation"`
	Assistance  []models.SectorRecord `json:"assistance"`
}

// Sectors returns internation sectors followed by assistance sectors.
func (v AggregatedView) Sectors() []models.SectorRecord {
	out := make([]models.SectorRecord, 0, len(v.Internation)+len(v.Assistance))
	out = append(out, v.Internation...)
	return append(out, v.Assistance...)
}

// TotalCost is the summed cost of every sector in the view.
func (v AggregatedView) TotalCost() decimal.Decimal {
	return models.SumCost(v.Internation).Add(models.SumCost(v.Assistance))
}

// TotalHeadcount is the summed headcount of every sector in the view.
func (v AggregatedView) TotalHeadcount() int {
	return models.SumHeadcount(v.Internation) + models.SumHeadcount(v.Assistance)
}
