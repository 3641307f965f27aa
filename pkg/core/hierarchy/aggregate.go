package hierarchy

import (
	"hospital_dimensioning/pkg/models"
)

// Aggregate builds one view per entity at the requested level.
//
// At LevelHospital every hospital in the forest yields a view holding its own
// sectors unchanged. At the parent levels every entity of the matching kind
// yields a view that concatenates, in input order, the sectors of every
// hospital reachable below it, each tagged with its hospital's name.
// Missing sector lists contribute nothing. No sorting happens here.
func Aggregate(entities []Entity, level Level) []AggregatedView {
	var views []AggregatedView

	if level == LevelHospital {
		for _, h := range Hospitals(entities) {
			views = append(views, AggregatedView{
				EntityID:    h.ID,
				EntityName:  h.Name,
				Level:       LevelHospital,
				Hospitals:   []string{h.Name},
				Internation: orEmpty(h.Internation),
				Assistance:  orEmpty(h.Assistance),
			})
		}
		return views
	}

	walk(entities, func(e Entity) {
		if e.Kind != Kind(level) {
			return
		}
		view := AggregatedView{
			EntityID:    e.ID,
			EntityName:  e.Name,
			Level:       level,
			Hospitals:   []string{},
			Internation: []models.SectorRecord{},
			Assistance:  []models.SectorRecord{},
		}
		for _, h := range Hospitals(e.Children) {
			view.Hospitals = append(view.Hospitals, h.Name)
			view.Internation = appendTagged(view.Internation, h.Internation, h.Name)
			view.Assistance = appendTagged(view.Assistance, h.Assistance, h.Name)
		}
		views = append(views, view)
	})

	return views
}

// Hospitals flattens a forest into its hospitals, depth first, in input order.
func Hospitals(entities []Entity) []Entity {
	var out []Entity
	walk(entities, func(e Entity) {
		if e.Kind == KindHospital {
			out = append(out, e)
		}
	})
	return out
}

// Find returns the first entity with the given id, searching depth first.
func Find(entities []Entity, id string) (Entity, bool) {
	var found Entity
	ok := false
	walk(entities, func(e Entity) {
		if !ok && e.ID == id {
			found, ok = e, true
		}
	})
	return found, ok
}

func walk(entities []Entity, fn func(Entity)) {
	for _, e := range entities {
		fn(e)
		walk(e.Children, fn)
	}
}

func appendTagged(dst, src []models.SectorRecord, hospital string) []models.SectorRecord {
	for _, s := range src {
		s = s.Clone()
		s.HospitalName = hospital
		dst = append(dst, s)
	}
	return dst
}

func orEmpty(s []models.SectorRecord) []models.SectorRecord {
	if s == nil {
		return []models.SectorRecord{}
	}
	return s
}
