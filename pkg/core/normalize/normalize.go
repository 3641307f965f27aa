package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hospital_dimensioning/pkg/models"
)

// ErrNotObject is returned by Decode when the payload is not a JSON object.
var ErrNotObject = errors.New("sector payload is not a json object")

// ErrUnknownShape is returned by Decode for a shape tag it does not know.
var ErrUnknownShape = errors.New("unknown sector shape")

// Decode reads one raw sector payload in the given shape. Field-level
// defects never fail decoding; only a payload that is not an object does.
func Decode(shape Shape, data []byte) (Variant, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("decode %s sector: %w", shape, ErrNotObject)
	}

	var (
		v   Variant
		err error
	)
	switch shape {
	case ShapeInternation:
		var s InternationSector
		err = json.Unmarshal(trimmed, &s)
		v = s
	case ShapeAssistance:
		var s AssistanceSector
		err = json.Unmarshal(trimmed, &s)
		v = s
	case ShapeBaseline:
		var s BaselineSector
		err = json.Unmarshal(trimmed, &s)
		v = s
	case ShapeProjected:
		var s ProjectedSector
		err = json.Unmarshal(trimmed, &s)
		v = s
	case ShapeNormalized:
		var s models.SectorRecord
		err = json.Unmarshal(trimmed, &s)
		v = Normalized{s}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s sector: %w", shape, err)
	}
	return v, nil
}

// Normalize converts a decoded variant into a SectorRecord tagged with state.
// A Normalized input keeps its hospital tag.
func Normalize(v Variant, state models.StateKind) models.SectorRecord {
	rec, _ := v.toRecord()
	rec.State = state
	return rec
}

// NormalizeFrom is Normalize for sectors read out of a multi-hospital payload:
// the record is tagged with the owning hospital's name.
func NormalizeFrom(v Variant, state models.StateKind, hospitalName string) models.SectorRecord {
	rec := Normalize(v, state)
	if hospitalName != "" {
		rec.HospitalName = hospitalName
	}
	return rec
}

// Defects counts the fields of v that were coerced to zero because they were
// malformed or negative.
func Defects(v Variant) int {
	_, n := v.toRecord()
	return n
}

// DecodeAll decodes and normalizes a list of raw payloads of one shape.
// Payloads that are not objects are skipped and counted in the returned
// defect total together with every coerced field.
func DecodeAll(shape Shape, raws []json.RawMessage, state models.StateKind, hospitalName string) ([]models.SectorRecord, int) {
	out := make([]models.SectorRecord, 0, len(raws))
	defects := 0
	for _, raw := range raws {
		v, err := Decode(shape, raw)
		if err != nil {
			defects++
			continue
		}
		rec, n := v.toRecord()
		rec.State = state
		if hospitalName != "" {
			rec.HospitalName = hospitalName
		}
		out = append(out, rec)
		defects += n
	}
	return out, defects
}

// =============================================================================
// ROLE ACCUMULATION
// =============================================================================

// roleAccumulator sums quantities per canonical role id, keeping first-seen order.
type roleAccumulator struct {
	index map[string]int
	list  []models.StaffEntry
}

func newRoleAccumulator() *roleAccumulator {
	return &roleAccumulator{index: make(map[string]int)}
}

func (a *roleAccumulator) add(roleID, roleName string, quantity int) {
	id := CanonicalID(roleID)
	if i, ok := a.index[id]; ok {
		a.list[i].Quantity += quantity
		if a.list[i].RoleName == "" {
			a.list[i].RoleName = roleName
		}
		return
	}
	a.index[id] = len(a.list)
	a.list = append(a.list, models.StaffEntry{RoleID: id, RoleName: roleName, Quantity: quantity})
}

func (a *roleAccumulator) entries() []models.StaffEntry {
	if a.list == nil {
		return []models.StaffEntry{}
	}
	return a.list
}
