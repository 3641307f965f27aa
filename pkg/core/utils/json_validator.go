// Package utils holds the lenient decoding helpers used at the edges of the
// engine, where payloads exported from the backend or written by hand are read.
package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

var (
	// ErrUnparseable is returned by SmartParse when no strategy produced valid JSON.
	ErrUnparseable = errors.New("payload is not valid json, repairable json or hjson")
	// ErrInvalidTarget is returned by SmartParse when target is not a non-nil pointer.
	ErrInvalidTarget = errors.New("decode target must be a non-nil pointer")
)

// RepairJSON fixes the usual defects of hand-edited or truncated exports:
// unquoted keys, single quotes, trailing commas, unclosed arrays and objects,
// comments and stray markdown fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("repair json: %w", err)
	}
	return repaired, nil
}

// ParseHJSON parses Hjson (comments, unquoted keys and strings, optional
// commas) and returns the equivalent standard JSON.
func ParseHJSON(data string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(data), &result); err != nil {
		return "", fmt.Errorf("parse hjson: %w", err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal hjson result: %w", err)
	}
	return string(out), nil
}

// SmartParse decodes input into target trying, in order, strict JSON,
// repaired JSON and Hjson. It returns the JSON text that finally decoded.
// Each attempt decodes into a fresh value; target is only written on success,
// so a failed attempt never leaves fields behind.
func SmartParse(input string, target interface{}) (string, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return "", fmt.Errorf("%w: %T", ErrInvalidTarget, target)
	}

	for _, candidate := range candidates(input) {
		fresh := reflect.New(rv.Elem().Type())
		if err := json.Unmarshal([]byte(candidate), fresh.Interface()); err != nil {
			continue
		}
		rv.Elem().Set(fresh.Elem())
		return candidate, nil
	}

	return "", ErrUnparseable
}

// candidates lists the JSON texts SmartParse tries, skipping strategies that
// fail or repeat an earlier text.
func candidates(input string) []string {
	out := []string{input}
	if repaired, err := RepairJSON(input); err == nil && repaired != input {
		out = append(out, repaired)
	}
	if converted, err := ParseHJSON(input); err == nil && converted != input {
		out = append(out, converted)
	}
	return out
}
