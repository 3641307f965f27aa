package ingest

import (
	"errors"
	"fmt"
	"time"

	"hospital_dimensioning/pkg/core/normalize"
	"hospital_dimensioning/pkg/models"
)

// ErrMultipleSelected is returned when a hospital has more than one baseline
// flagged as selected.
var ErrMultipleSelected = errors.New("more than one selected baseline")

// Baseline is an immutable snapshot. Its sectors are only reachable through
// accessors that return copies.
type Baseline struct {
	id          string
	hospitalID  string
	name        string
	createdAt   time.Time
	selected    bool
	internation []models.SectorRecord
	assistance  []models.SectorRecord
}

func (b Baseline) ID() string           { return b.id }
func (b Baseline) HospitalID() string   { return b.hospitalID }
func (b Baseline) Name() string         { return b.name }
func (b Baseline) CreatedAt() time.Time { return b.createdAt }
func (b Baseline) Selected() bool       { return b.selected }

// Internation returns a copy of the snapshot's inpatient sectors.
func (b Baseline) Internation() []models.SectorRecord {
	return models.CloneSectors(b.internation)
}

// Assistance returns a copy of the snapshot's assistance sectors.
func (b Baseline) Assistance() []models.SectorRecord {
	return models.CloneSectors(b.assistance)
}

// newBaseline normalizes a raw snapshot. The returned int counts coerced
// fields, including an unreadable creation date.
func newBaseline(raw RawBaseline) (Baseline, int) {
	b := Baseline{
		id:         normalize.CanonicalID(string(raw.ID)),
		hospitalID: normalize.CanonicalID(string(raw.HospitalID)),
		name:       raw.Name,
		selected:   raw.Selected,
	}
	defects := 0
	if raw.CreatedAt != "" {
		t, err := parseTime(raw.CreatedAt)
		if err != nil {
			defects++
		}
		b.createdAt = t
	}

	var n int
	b.internation, n = normalize.DecodeAll(normalize.ShapeBaseline, raw.Internation, models.StateBaseline, "")
	defects += n
	defaultKind(b.internation, models.SectorInternation)

	b.assistance, n = normalize.DecodeAll(normalize.ShapeBaseline, raw.Assistance, models.StateBaseline, "")
	defects += n
	defaultKind(b.assistance, models.SectorAssistance)

	return b, defects
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// SelectBaseline picks the baseline a hospital compares against: the one
// flagged as selected, or the most recently created when none is flagged.
// Ties on creation time keep the first listed.
func SelectBaseline(baselines []Baseline, hospitalID string) (Baseline, bool, error) {
	var (
		selected []Baseline
		latest   Baseline
		found    bool
	)
	for _, b := range baselines {
		if b.hospitalID != hospitalID {
			continue
		}
		if b.selected {
			selected = append(selected, b)
		}
		if !found || b.createdAt.After(latest.createdAt) {
			latest, found = b, true
		}
	}

	switch len(selected) {
	case 0:
		return latest, found, nil
	case 1:
		return selected[0], true, nil
	}
	return Baseline{}, false, fmt.Errorf("hospital %s: %w (%d)", hospitalID, ErrMultipleSelected, len(selected))
}

func defaultKind(sectors []models.SectorRecord, kind models.SectorKind) {
	for i := range sectors {
		if sectors[i].Kind == "" {
			sectors[i].Kind = kind
		}
	}
}
