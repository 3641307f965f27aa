package ranking

import (
	"testing"

	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/core/variance"
	"hospital_dimensioning/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, name string, ref, tgt int64) variance.VarianceRecord {
	m := variance.NewMeasure(decimal.NewFromInt(ref), decimal.NewFromInt(tgt))
	return variance.VarianceRecord{EntityID: id, EntityName: name, Quantity: m, Cost: m}
}

func names(records []variance.VarianceRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.EntityName
	}
	return out
}

func TestRank_TwoHospitalScenario(t *testing.T) {
	hospitals := []hierarchy.Entity{
		{ID: "a", Name: "hospitalA", Kind: hierarchy.KindHospital, Internation: []models.SectorRecord{
			{ID: "s1", Name: "UTI", CostAmount: decimal.NewFromInt(1000), Staff: []models.StaffEntry{{RoleID: "enf", Quantity: 2}}},
		}},
		{ID: "b", Name: "hospitalB", Kind: hierarchy.KindHospital, Internation: []models.SectorRecord{
			{ID: "s2", Name: "UTI", CostAmount: decimal.NewFromInt(2000), Staff: []models.StaffEntry{{RoleID: "enf", Quantity: 3}}},
		}},
	}
	network := []hierarchy.Entity{{ID: "r", Name: "Rede", Kind: hierarchy.KindNetwork, Children: hospitals}}

	views := hierarchy.Aggregate(network, hierarchy.LevelNetwork)
	require.Len(t, views, 1)
	assert.True(t, views[0].TotalCost().Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, 5, views[0].TotalHeadcount())

	projected := []hierarchy.Entity{
		{ID: "a", Name: "hospitalA", Kind: hierarchy.KindHospital, Internation: []models.SectorRecord{
			{ID: "s1", Name: "UTI", CostAmount: decimal.NewFromInt(1200)},
		}},
		{ID: "b", Name: "hospitalB", Kind: hierarchy.KindHospital, Internation: []models.SectorRecord{
			{ID: "s2", Name: "UTI", CostAmount: decimal.NewFromInt(1800)},
		}},
	}
	records := variance.CompareViews(
		hierarchy.Aggregate(hospitals, hierarchy.LevelHospital),
		hierarchy.Aggregate(projected, hierarchy.LevelHospital),
		models.StateBaseline, models.StateProjected,
	)

	ranked := Rank(records, variance.MetricCost, ByAbsolute)
	require.Len(t, ranked, 2)
	assert.Equal(t, "hospitalB", ranked[0].EntityName)
	assert.True(t, ranked[0].Cost.Delta.Equal(decimal.NewFromInt(-200)))
	assert.Equal(t, "hospitalA", ranked[1].EntityName)
	assert.True(t, ranked[1].Cost.Delta.Equal(decimal.NewFromInt(200)))
}

func TestRank_ByMagnitude(t *testing.T) {
	in := []variance.VarianceRecord{
		record("1", "small", 100, 110),
		record("2", "big drop", 100, 20),
		record("3", "big rise", 100, 190),
	}

	got := Rank(in, variance.MetricCost, ByAbsolute)
	assert.Equal(t, []string{"big rise", "big drop", "small"}, names(got))

	got = Rank(in, variance.MetricCost, ByPercent)
	assert.Equal(t, []string{"big rise", "big drop", "small"}, names(got))

	// Input order is untouched.
	assert.Equal(t, []string{"small", "big drop", "big rise"}, names(in))
}

func TestRank_PercentVersusAbsolute(t *testing.T) {
	in := []variance.VarianceRecord{
		record("1", "large base", 10000, 11000), // +1000, +10%
		record("2", "small base", 10, 20),       // +10, +100%
	}
	assert.Equal(t, []string{"large base", "small base"}, names(Rank(in, variance.MetricCost, ByAbsolute)))
	assert.Equal(t, []string{"small base", "large base"}, names(Rank(in, variance.MetricCost, ByPercent)))
}

func TestRank_NameTieBreakIsLocaleAware(t *testing.T) {
	in := []variance.VarianceRecord{
		record("1", "Clínica", 100, 150),
		record("2", "Berçário", 100, 150),
		record("3", "Ágata", 100, 150),
	}
	got := Rank(in, variance.MetricCost, ByAbsolute)
	assert.Equal(t, []string{"Ágata", "Berçário", "Clínica"}, names(got))
}

func TestRank_Deterministic(t *testing.T) {
	in := []variance.VarianceRecord{
		record("b", "UTI", 100, 150),
		record("a", "UTI", 100, 150),
		record("c", "Centro", 100, 50),
	}
	in[0].HospitalName = "Hospital Z"
	in[1].HospitalName = "Hospital Z"

	first := Rank(in, variance.MetricCost, ByAbsolute)
	reversed := []variance.VarianceRecord{in[2], in[1], in[0]}
	second := Rank(reversed, variance.MetricCost, ByAbsolute)
	assert.Equal(t, first, second)
	assert.Equal(t, "c", first[0].EntityID)
	assert.Equal(t, "a", first[1].EntityID)
	assert.Equal(t, "b", first[2].EntityID)
}

func TestLargestDeviation(t *testing.T) {
	_, ok := LargestDeviation(nil, variance.MetricCost, ByAbsolute)
	assert.False(t, ok)

	in := []variance.VarianceRecord{
		record("1", "A", 100, 90),
		record("2", "B", 100, 40),
	}
	got, ok := LargestDeviation(in, variance.MetricCost, ByAbsolute)
	require.True(t, ok)
	assert.Equal(t, "B", got.EntityName)
}

func TestLeaderboards(t *testing.T) {
	in := []variance.VarianceRecord{
		record("1", "up", 100, 130),
		record("2", "down", 100, 60),
		record("3", "flat", 100, 100),
	}

	assert.Equal(t, []string{"down", "flat", "up"}, names(RankByCostPercent(in)))
	assert.Equal(t, []string{"up", "flat", "down"}, names(RankByQuantityPercent(in)))
	assert.Equal(t, []string{"down", "flat", "up"}, names(Leaderboard(in, variance.MetricQuantity, Ascending)))
}

func TestParseBy(t *testing.T) {
	by, err := ParseBy("absolute")
	require.NoError(t, err)
	assert.Equal(t, ByAbsolute, by)

	_, err = ParseBy("median")
	assert.Error(t, err)
}

func TestNewRanker(t *testing.T) {
	r, err := NewRanker("en-US")
	require.NoError(t, err)
	got := r.Rank([]variance.VarianceRecord{record("1", "b", 1, 2), record("2", "a", 1, 2)}, variance.MetricCost, ByAbsolute)
	assert.Equal(t, []string{"a", "b"}, names(got))

	_, err = NewRanker("not a locale!")
	assert.Error(t, err)
}
