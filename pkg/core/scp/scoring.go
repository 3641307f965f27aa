package scp

import (
	"fmt"
	"sort"
	"strings"
)

// Score totals a filled questionnaire. answers maps question key (any case)
// to the value of the chosen option. Every question must be answered with one
// of its own option values.
func Score(m Method, answers map[string]float64) (float64, error) {
	byKey := make(map[string]float64, len(answers))
	for k, v := range answers {
		byKey[strings.ToLower(k)] = v
	}

	total := 0.0
	for _, q := range m.Questions {
		key := strings.ToLower(q.Key)
		v, ok := byKey[key]
		if !ok {
			return 0, fmt.Errorf("%w: question %q not answered", ErrInvalidAnswer, q.Key)
		}
		if !hasOptionValue(q, v) {
			return 0, fmt.Errorf("%w: %v is not an option of question %q", ErrInvalidAnswer, v, q.Key)
		}
		total += v
		delete(byKey, key)
	}

	if len(byKey) > 0 {
		unknown := make([]string, 0, len(byKey))
		for k := range byKey {
			unknown = append(unknown, k)
		}
		sort.Strings(unknown)
		return 0, fmt.Errorf("%w: unknown question %q", ErrInvalidAnswer, unknown[0])
	}

	return total, nil
}

// Classify returns the label of the band whose inclusive range holds score.
func Classify(bands []Band, score float64) (string, bool) {
	for _, b := range bands {
		if score >= b.Min && score <= b.Max {
			return b.Class, true
		}
	}
	return "", false
}

func hasOptionValue(q Question, v float64) bool {
	for _, opt := range q.Options {
		if opt.Value == v {
			return true
		}
	}
	return false
}
