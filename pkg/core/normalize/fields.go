package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Money is a monetary field that never fails to decode. Numbers, numeric
// strings ("1234.5", "R$ 1.234,50") and null are accepted; anything else, and
// any negative amount, decodes to zero and sets Defect.
type Money struct {
	Amount decimal.Decimal
	Defect bool
}

func (m *Money) UnmarshalJSON(data []byte) error {
	m.Amount, m.Defect = decimal.Zero, false

	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var amount decimal.Decimal
	var ok bool
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			m.Defect = true
			return nil
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		amount, ok = ParseMoney(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		d, err := decimal.NewFromString(string(raw))
		amount, ok = d, err == nil
	}

	if !ok || amount.IsNegative() {
		m.Defect = true
		return nil
	}
	m.Amount = amount
	return nil
}

// ParseMoney parses a monetary string written either with a decimal point or
// with Brazilian separators ("1.234,56"). A leading "R$" marks the value as
// pt-BR, so a single dot followed by exactly three digits ("R$ 1.234") is a
// thousands separator; without the symbol "1.234" stays a decimal.
func ParseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	brl := strings.HasPrefix(s, "R$")
	s = strings.TrimPrefix(s, "R$")
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	case lastDot >= 0 && brl && len(s)-lastDot-1 == 3:
		s = strings.Replace(s, ".", "", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// MaxCount is the largest quantity a Count accepts.
const MaxCount = math.MaxInt32

// Count is a non-negative integer quantity that never fails to decode.
// Fractional values are rounded; negatives, values above MaxCount and
// non-numeric values become zero and set Defect.
type Count struct {
	N      int
	Defect bool
}

func (c *Count) UnmarshalJSON(data []byte) error {
	c.N, c.Defect = 0, false

	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			c.Defect = true
			return nil
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return nil
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || math.Round(f) > MaxCount {
		c.Defect = true
		return nil
	}
	c.N = int(math.Round(f))
	return nil
}

// ID is an identifier the backend may send as a string or as a number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*id = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			*id = ""
			return nil
		}
		*id = ID(s)
		return nil
	}
	*id = ID(raw)
	return nil
}

// List decodes a JSON array leniently: a missing or non-array value is an
// empty list and elements that fail to decode are dropped.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	*l = nil

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// CanonicalID trims an identifier and rewrites UUIDs to their canonical
// lower-case form, so the same entity matches across payload variants.
func CanonicalID(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}
