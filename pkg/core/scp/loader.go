package scp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hospital_dimensioning/pkg/core/utils"

	"gopkg.in/yaml.v2"
)

// LoadMethod reads a method definition from disk. The format follows the
// extension: .yaml/.yml, .hjson, anything else is parsed as (lenient) JSON.
// The method is not validated here.
func LoadMethod(path string) (*Method, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read method %s: %w", path, err)
	}
	return ParseMethod(data, filepath.Ext(path))
}

// ParseMethod decodes a method from raw bytes using the format named by ext.
func ParseMethod(data []byte, ext string) (*Method, error) {
	var m Method

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse yaml method: %w", err)
		}
	case ".hjson":
		js, err := utils.ParseHJSON(string(data))
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(js), &m); err != nil {
			return nil, fmt.Errorf("decode hjson method: %w", err)
		}
	default:
		if _, err := utils.SmartParse(string(data), &m); err != nil {
			return nil, fmt.Errorf("parse json method: %w", err)
		}
	}

	return &m, nil
}
