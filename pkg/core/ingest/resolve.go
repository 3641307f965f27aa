package ingest

import (
	"fmt"

	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/core/normalize"
	"hospital_dimensioning/pkg/models"
)

// Resolved holds one entity tree per state. All three trees share the
// structure of the dataset's entity list; only hospital sectors differ.
type Resolved struct {
	Current   []hierarchy.Entity
	Baseline  []hierarchy.Entity
	Projected []hierarchy.Entity

	// Baselines maps hospital id to the snapshot its Baseline tree uses.
	Baselines map[string]Baseline

	// Defects counts every field coerced to zero while normalizing.
	Defects int
}

// Tree returns the entity tree of state.
func (r *Resolved) Tree(state models.StateKind) []hierarchy.Entity {
	switch state {
	case models.StateBaseline:
		return r.Baseline
	case models.StateProjected:
		return r.Projected
	}
	return r.Current
}

// Resolve normalizes every sector payload and builds the three state trees.
func Resolve(ds *Dataset) (*Resolved, error) {
	res := &Resolved{Baselines: make(map[string]Baseline)}

	baselines := make([]Baseline, 0, len(ds.Baselines))
	for _, raw := range ds.Baselines {
		b, n := newBaseline(raw)
		res.Defects += n
		baselines = append(baselines, b)
	}

	projected := make(map[string][]models.SectorRecord)
	for _, p := range ds.Projected {
		units, n := normalize.DecodeAll(normalize.ShapeProjected, p.Units, models.StateProjected, "")
		res.Defects += n
		id := normalize.CanonicalID(string(p.HospitalID))
		projected[id] = append(projected[id], units...)
	}

	var err error
	res.Current, err = build(ds.Entities, func(e RawEntity) ([]models.SectorRecord, []models.SectorRecord, error) {
		in, n := normalize.DecodeAll(normalize.ShapeInternation, e.Internation, models.StateCurrent, "")
		as, m := normalize.DecodeAll(normalize.ShapeAssistance, e.Assistance, models.StateCurrent, "")
		res.Defects += n + m
		defaultKind(in, models.SectorInternation)
		defaultKind(as, models.SectorAssistance)
		return in, as, nil
	})
	if err != nil {
		return nil, err
	}

	res.Baseline, err = build(ds.Entities, func(e RawEntity) ([]models.SectorRecord, []models.SectorRecord, error) {
		id := normalize.CanonicalID(string(e.ID))
		b, ok, err := SelectBaseline(baselines, id)
		if err != nil || !ok {
			return nil, nil, err
		}
		res.Baselines[id] = b
		return b.Internation(), b.Assistance(), nil
	})
	if err != nil {
		return nil, err
	}

	res.Projected, err = build(ds.Entities, func(e RawEntity) ([]models.SectorRecord, []models.SectorRecord, error) {
		in, as := splitByKind(projected[normalize.CanonicalID(string(e.ID))])
		return in, as, nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

type sectorSource func(hospital RawEntity) (internation, assistance []models.SectorRecord, err error)

func build(raws []RawEntity, sectors sectorSource) ([]hierarchy.Entity, error) {
	out := make([]hierarchy.Entity, 0, len(raws))
	for _, raw := range raws {
		e := hierarchy.Entity{
			ID:   normalize.CanonicalID(string(raw.ID)),
			Name: raw.Name,
			Kind: entityKind(raw),
		}
		if e.Kind == hierarchy.KindHospital {
			in, as, err := sectors(raw)
			if err != nil {
				return nil, err
			}
			e.Internation, e.Assistance = in, as
		}
		children, err := build(raw.Children, sectors)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name, err)
		}
		if len(children) > 0 {
			e.Children = children
		}
		out = append(out, e)
	}
	return out, nil
}

// entityKind reads the declared kind; an undeclared kind is a hospital when
// the node has no children.
func entityKind(raw RawEntity) hierarchy.Kind {
	switch k := hierarchy.Kind(raw.Kind); k {
	case hierarchy.KindHospital, hierarchy.KindGroup, hierarchy.KindRegion, hierarchy.KindNetwork:
		return k
	}
	if len(raw.Children) == 0 {
		return hierarchy.KindHospital
	}
	return hierarchy.KindNetwork
}

// splitByKind separates projected units into inpatient and assistance lists.
// Units with no declared kind count as inpatient.
func splitByKind(units []models.SectorRecord) (internation, assistance []models.SectorRecord) {
	for _, u := range units {
		if u.Kind == models.SectorAssistance {
			assistance = append(assistance, u)
			continue
		}
		if u.Kind == "" {
			u.Kind = models.SectorInternation
		}
		internation = append(internation, u)
	}
	return internation, assistance
}
