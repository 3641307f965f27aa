// Package ranking orders variance records and decomposes variance into
// waterfall steps that reconcile from a start total to an end total.
package ranking

import (
	"fmt"
	"sort"

	"hospital_dimensioning/pkg/core/variance"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// By selects whether records are ordered by percent or absolute variance.
type By string

const (
	ByPercent  By = "percent"
	ByAbsolute By = "absolute"
)

// ParseBy validates a ranking mode.
func ParseBy(s string) (By, error) {
	switch By(s) {
	case ByPercent, ByAbsolute:
		return By(s), nil
	}
	return "", fmt.Errorf("unknown ranking mode %q (want percent or absolute)", s)
}

// Direction of a signed leaderboard.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// DefaultLocale is used for name tie-breaks when no locale is configured.
var DefaultLocale = language.BrazilianPortuguese

// Ranker orders records with locale-aware name tie-breaks.
// The zero value uses DefaultLocale.
type Ranker struct {
	Locale language.Tag
}

// NewRanker parses a BCP 47 locale such as "pt-BR".
func NewRanker(locale string) (Ranker, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return Ranker{}, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return Ranker{Locale: tag}, nil
}

// Rank orders records by the magnitude of the chosen metric, largest first.
func Rank(records []variance.VarianceRecord, metric variance.Metric, by By) []variance.VarianceRecord {
	return Ranker{}.Rank(records, metric, by)
}

// LargestDeviation returns the record with the largest magnitude of variance.
func LargestDeviation(records []variance.VarianceRecord, metric variance.Metric, by By) (variance.VarianceRecord, bool) {
	return Ranker{}.LargestDeviation(records, metric, by)
}

// Leaderboard orders records by signed percent variance.
func Leaderboard(records []variance.VarianceRecord, metric variance.Metric, dir Direction) []variance.VarianceRecord {
	return Ranker{}.Leaderboard(records, metric, dir)
}

// RankByCostPercent lists records by signed cost percent, most negative first.
func RankByCostPercent(records []variance.VarianceRecord) []variance.VarianceRecord {
	return Leaderboard(records, variance.MetricCost, Ascending)
}

// RankByQuantityPercent lists records by signed quantity percent, largest
// increase first.
func RankByQuantityPercent(records []variance.VarianceRecord) []variance.VarianceRecord {
	return Leaderboard(records, variance.MetricQuantity, Descending)
}

// =============================================================================
// RANKER
// =============================================================================

func (r Ranker) tag() language.Tag {
	if r.Locale == language.Und {
		return DefaultLocale
	}
	return r.Locale
}

// Rank returns a sorted copy of records, ordered by |metric| descending.
// Records of equal magnitude list the negative variance first, then fall back
// to the name tie-break.
func (r Ranker) Rank(records []variance.VarianceRecord, metric variance.Metric, by By) []variance.VarianceRecord {
	out := copyRecords(records)
	tie := r.tieBreaker()
	sort.SliceStable(out, func(i, j int) bool {
		if c := compareMagnitude(out[i], out[j], metric, by); c != 0 {
			return c > 0
		}
		// Equal magnitude: reductions before increases.
		if c := compareSigned(out[i], out[j], metric, by); c != 0 {
			return c < 0
		}
		return tie(out[i], out[j]) < 0
	})
	return out
}

// LargestDeviation returns the head of Rank.
func (r Ranker) LargestDeviation(records []variance.VarianceRecord, metric variance.Metric, by By) (variance.VarianceRecord, bool) {
	if len(records) == 0 {
		return variance.VarianceRecord{}, false
	}
	return r.Rank(records, metric, by)[0], true
}

// Leaderboard returns a copy of records sorted by signed DeltaPercent.
func (r Ranker) Leaderboard(records []variance.VarianceRecord, metric variance.Metric, dir Direction) []variance.VarianceRecord {
	out := copyRecords(records)
	tie := r.tieBreaker()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Measure(metric).DeltaPercent, out[j].Measure(metric).DeltaPercent
		if a != b {
			if dir == Descending {
				return a > b
			}
			return a < b
		}
		return tie(out[i], out[j]) < 0
	})
	return out
}

// tieBreaker orders by collated entity name, then hospital name, then id.
// A collator keeps internal buffers, so each sort gets its own.
func (r Ranker) tieBreaker() func(a, b variance.VarianceRecord) int {
	col := collate.New(r.tag())
	return func(a, b variance.VarianceRecord) int {
		if c := col.CompareString(a.EntityName, b.EntityName); c != 0 {
			return c
		}
		if c := col.CompareString(a.HospitalName, b.HospitalName); c != 0 {
			return c
		}
		switch {
		case a.EntityID < b.EntityID:
			return -1
		case a.EntityID > b.EntityID:
			return 1
		}
		return 0
	}
}

func compareMagnitude(a, b variance.VarianceRecord, metric variance.Metric, by By) int {
	ma, mb := a.Measure(metric), b.Measure(metric)
	if by == ByPercent {
		pa, pb := abs(ma.DeltaPercent), abs(mb.DeltaPercent)
		switch {
		case pa > pb:
			return 1
		case pa < pb:
			return -1
		}
		return 0
	}
	return ma.Delta.Abs().Cmp(mb.Delta.Abs())
}

func compareSigned(a, b variance.VarianceRecord, metric variance.Metric, by By) int {
	ma, mb := a.Measure(metric), b.Measure(metric)
	if by == ByPercent {
		switch {
		case ma.DeltaPercent > mb.DeltaPercent:
			return 1
		case ma.DeltaPercent < mb.DeltaPercent:
			return -1
		}
		return 0
	}
	return ma.Delta.Cmp(mb.Delta)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func copyRecords(in []variance.VarianceRecord) []variance.VarianceRecord {
	out := make([]variance.VarianceRecord, len(in))
	copy(out, in)
	return out
}
