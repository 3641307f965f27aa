package hierarchy

import (
	"testing"

	"hospital_dimensioning/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sector(id, name string, cost int64, qty ...int) models.SectorRecord {
	s := models.SectorRecord{ID: id, Name: name, CostAmount: decimal.NewFromInt(cost), Staff: []models.StaffEntry{}}
	for i, q := range qty {
		s.Staff = append(s.Staff, models.StaffEntry{RoleID: string(rune('a' + i)), Quantity: q})
	}
	return s
}

func sampleForest() []Entity {
	hospA := Entity{
		ID: "hA", Name: "Hospital A", Kind: KindHospital,
		Internation: []models.SectorRecord{sector("uti", "UTI", 1000, 2)},
		Assistance:  []models.SectorRecord{sector("amb", "Ambulatório", 500, 1, 1)},
	}
	hospB := Entity{
		ID: "hB", Name: "Hospital B", Kind: KindHospital,
		Internation: []models.SectorRecord{sector("uti", "UTI", 2000, 3)},
	}
	hospC := Entity{ID: "hC", Name: "Hospital C", Kind: KindHospital}

	return []Entity{
		{
			ID: "r1", Name: "Rede Sul", Kind: KindNetwork,
			Children: []Entity{
				{ID: "g1", Name: "Grupo 1", Kind: KindGroup, Children: []Entity{hospA, hospC}},
				{ID: "g2", Name: "Grupo 2", Kind: KindGroup, Children: []Entity{hospB}},
			},
		},
	}
}

func TestAggregate_HospitalLevelKeepsSectorsUnchanged(t *testing.T) {
	views := Aggregate(sampleForest(), LevelHospital)
	require.Len(t, views, 3)

	assert.Equal(t, []string{"Hospital A", "Hospital C", "Hospital B"},
		[]string{views[0].EntityName, views[1].EntityName, views[2].EntityName})
	assert.Equal(t, "", views[0].Internation[0].HospitalName, "hospital level leaves sectors untouched")
	assert.Empty(t, views[1].Internation)
	assert.NotNil(t, views[1].Internation)
}

func TestAggregate_NetworkConcatenatesInInputOrder(t *testing.T) {
	views := Aggregate(sampleForest(), LevelNetwork)
	require.Len(t, views, 1)
	v := views[0]

	assert.Equal(t, "Rede Sul", v.EntityName)
	assert.Equal(t, []string{"Hospital A", "Hospital C", "Hospital B"}, v.Hospitals)
	require.Len(t, v.Internation, 2)
	assert.Equal(t, "Hospital A", v.Internation[0].HospitalName)
	assert.Equal(t, "Hospital B", v.Internation[1].HospitalName)
	assert.Equal(t, "Hospital B - UTI", v.Internation[1].QualifiedName())
	require.Len(t, v.Assistance, 1)

	assert.True(t, v.TotalCost().Equal(decimal.NewFromInt(3500)))
	assert.Equal(t, 7, v.TotalHeadcount())
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	forest := sampleForest()
	_ = Aggregate(forest, LevelGroup)
	assert.Equal(t, "", forest[0].Children[0].Children[0].Internation[0].HospitalName)
}

func TestAggregate_GroupLevel(t *testing.T) {
	views := Aggregate(sampleForest(), LevelGroup)
	require.Len(t, views, 2)
	assert.Equal(t, "Grupo 1", views[0].EntityName)
	assert.True(t, views[0].TotalCost().Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "Grupo 2", views[1].EntityName)
	assert.Equal(t, 3, views[1].TotalHeadcount())
}

func TestAggregate_Additivity(t *testing.T) {
	forest := sampleForest()
	hospitals := Aggregate(forest, LevelHospital)

	sumCost := decimal.Zero
	sumHead := 0
	for _, h := range hospitals {
		sumCost = sumCost.Add(h.TotalCost())
		sumHead += h.TotalHeadcount()
	}

	for _, level := range []Level{LevelNetwork} {
		views := Aggregate(forest, level)
		total := decimal.Zero
		head := 0
		for _, v := range views {
			total = total.Add(v.TotalCost())
			head += v.TotalHeadcount()
		}
		assert.True(t, total.Equal(sumCost), "%s cost %s != %s", level, total, sumCost)
		assert.Equal(t, sumHead, head)
	}
}

func TestAggregate_EndToEndTwoHospitals(t *testing.T) {
	forest := []Entity{{
		ID: "rede", Name: "Rede", Kind: KindNetwork,
		Children: []Entity{
			{ID: "a", Name: "hospitalA", Kind: KindHospital, Internation: []models.SectorRecord{sector("s1", "S1", 1000, 2)}},
			{ID: "b", Name: "hospitalB", Kind: KindHospital, Internation: []models.SectorRecord{sector("s2", "S2", 2000, 3)}},
		},
	}}

	views := Aggregate(forest, LevelNetwork)
	require.Len(t, views, 1)
	assert.True(t, views[0].TotalCost().Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, 5, views[0].TotalHeadcount())
}

func TestAggregate_NoMatchingLevel(t *testing.T) {
	assert.Empty(t, Aggregate(sampleForest(), LevelRegion))
	assert.Empty(t, Aggregate(nil, LevelNetwork))
}

func TestFindAndParseLevel(t *testing.T) {
	e, ok := Find(sampleForest(), "hB")
	require.True(t, ok)
	assert.Equal(t, "Hospital B", e.Name)

	_, ok = Find(sampleForest(), "zz")
	assert.False(t, ok)

	lvl, err := ParseLevel("regiao")
	require.NoError(t, err)
	assert.Equal(t, LevelRegion, lvl)

	_, err = ParseLevel("pais")
	assert.Error(t, err)
}
