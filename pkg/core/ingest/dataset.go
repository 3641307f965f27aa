// Package ingest reads dimensioning datasets from disk and resolves them into
// one organizational tree per state (Atual, Baseline, Projetado).
package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"hospital_dimensioning/pkg/core/normalize"
	"hospital_dimensioning/pkg/core/utils"
)

// Dataset is the raw file layout. Sector payloads stay raw until Resolve,
// because each list has its own wire shape.
type Dataset struct {
	Entities  []RawEntity     `json:"entities"`
	Baselines []RawBaseline   `json:"baselines"`
	Projected []RawProjection `json:"projetado"`
}

// RawEntity is a node of the organizational tree with live (Atual) sectors.
type RawEntity struct {
	ID          normalize.ID      `json:"id"`
	Name        string            `json:"name"`
	Kind        string            `json:"kind"`
	Internation []json.RawMessage `json:"internacao"`
	Assistance  []json.RawMessage `json:"assistencia"`
	Children    []RawEntity       `json:"children"`
}

// RawBaseline is a frozen snapshot of one hospital's sectors.
type RawBaseline struct {
	ID          normalize.ID      `json:"id"`
	HospitalID  normalize.ID      `json:"hospitalId"`
	Name        string            `json:"nome"`
	CreatedAt   string            `json:"criadoEm"`
	Selected    bool              `json:"selecionado"`
	Internation []json.RawMessage `json:"internacao"`
	Assistance  []json.RawMessage `json:"assistencia"`
}

// RawProjection holds the projected-final units of one hospital.
type RawProjection struct {
	HospitalID normalize.ID      `json:"hospitalId"`
	Units      []json.RawMessage `json:"unidades"`
}

// Load reads a dataset file. Strict JSON, slightly malformed JSON and Hjson
// are all accepted.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes dataset bytes.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if _, err := utils.SmartParse(string(data), &ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &ds, nil
}
