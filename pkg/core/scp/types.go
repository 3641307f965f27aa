// Package scp validates and evaluates SCP (Sistema de Classificação de Pacientes)
// method configurations: the questionnaire, its option scores, and the score
// bands ("faixas") that turn a total score into a care-level label.
//
// Validation is pure and is meant to gate the save of a method. A method that
// fails validation would corrupt every classification scored against it.
package scp

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Band maps an inclusive score range to a classification label.
type Band struct {
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Class string  `json:"classe" yaml:"classe"`
}

// Option is one selectable answer of a question and the score it contributes.
// A value that is not a number decodes to NaN so that ValidateQuestions
// rejects it with ErrInvalidOption instead of the decoder failing.
type Option struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

func (o *Option) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label string          `json:"label"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Label = raw.Label
	o.Value = jsonOptionValue(raw.Value)
	return nil
}

func (o *Option) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		Label string      `yaml:"label"`
		Value interface{} `yaml:"value"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	o.Label = raw.Label
	o.Value = yamlOptionValue(raw.Value)
	return nil
}

// jsonOptionValue reads a number or a numeric string. Missing and null are 0.
func jsonOptionValue(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return math.NaN()
		}
		return parseOptionValue(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return math.NaN()
	}
	return f
}

func yamlOptionValue(v interface{}) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float64:
		return x
	case string:
		return parseOptionValue(x)
	default:
		return math.NaN()
	}
}

func parseOptionValue(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// Question is one item of the SCP questionnaire.
type Question struct {
	Key     string   `json:"key" yaml:"key"`
	Title   string   `json:"title" yaml:"title"`
	Options []Option `json:"options" yaml:"options"`
}

// Method is a complete SCP configuration.
type Method struct {
	Key       string     `json:"key" yaml:"key"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
	Bands     []Band     `json:"faixas" yaml:"faixas"`
}
