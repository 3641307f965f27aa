package scp

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// ValidateBands checks that bands tile the score line: every bound finite,
// min <= max, and, sorted by Min, each band starting exactly one point after
// the previous one ends. An empty set is valid. The caller's slice is not reordered.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return nil
	}

	sorted := make([]Band, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	// NaN has no place in the ordering, so finiteness is settled before anything positional.
	for i, b := range sorted {
		if !isFinite(b.Min) || !isFinite(b.Max) {
			return newValidationError(ErrNonFiniteBound, i,
				"faixa %q has bounds [%v, %v]", b.Class, b.Min, b.Max)
		}
	}

	for i, b := range sorted {
		if b.Min > b.Max {
			return newValidationError(ErrInvertedRange, i,
				"faixa %q has min %v greater than max %v", b.Class, b.Min, b.Max)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if b.Min != prev.Max+1 {
			gap := "overlaps"
			if b.Min > prev.Max+1 {
				gap = "leaves a gap after"
			}
			return newValidationError(ErrNonContiguousRange, i,
				"faixa %q starting at %v %s faixa %q ending at %v",
				b.Class, b.Min, gap, prev.Class, prev.Max)
		}
	}

	return nil
}

// ValidateQuestions checks question keys and options. Keys must be non-empty,
// free of whitespace and unique ignoring case; every question needs at least
// one option and every option value must be finite.
func ValidateQuestions(questions []Question) error {
	seen := make(map[string]int, len(questions))

	for i, q := range questions {
		if q.Key == "" {
			return newValidationError(ErrEmptyQuestionKey, i, "question %d (%q) has no key", i, q.Title)
		}
		if strings.IndexFunc(q.Key, unicode.IsSpace) >= 0 {
			return newValidationError(ErrEmptyQuestionKey, i, "question key %q contains whitespace", q.Key)
		}

		folded := strings.ToLower(q.Key)
		if first, dup := seen[folded]; dup {
			return newValidationError(ErrDuplicateQuestionKey, i,
				"question key %q repeats question %d (%q)", q.Key, first, questions[first].Key)
		}
		seen[folded] = i

		if len(q.Options) == 0 {
			return newValidationError(ErrInvalidOption, i, "question %q has no options", q.Key)
		}
		for j, opt := range q.Options {
			if !isFinite(opt.Value) {
				return newValidationError(ErrInvalidOption, i,
					"question %q option %d (%q) has non-numeric value %v", q.Key, j, opt.Label, opt.Value)
			}
		}
	}

	return nil
}

// ValidateMethod validates a whole method: its key, its questions, then its bands.
func ValidateMethod(m Method) error {
	if strings.TrimSpace(m.Key) == "" {
		return newValidationError(ErrEmptyMethodKey, 0, "method %q has no key", m.Title)
	}
	if err := ValidateQuestions(m.Questions); err != nil {
		return err
	}
	return ValidateBands(m.Bands)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
