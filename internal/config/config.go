package config

import (
	"fmt"
	"sort"
	"strconv"
)

// InputConfig is a resolved cell input: which backend to use and how to
// connect to it.
type InputConfig struct {
	BackendName      string
	ConnectionString string
}

// CacheKey is the connection-cache key for this input. Every cell sharing
// the same key shares one backend connection.
func (in InputConfig) CacheKey() string {
	return in.BackendName + ":" + in.ConnectionString
}

// CellConfig is the validated configuration for one cell.
//
// Input and Output are optional: a cell without an input cannot be executed,
// a cell without an output is simply not persisted. AutoRun gates
// watcher-driven re-execution and defaults to true. Vars feeds the optional
// template pre-processing stage and plays no part in execution itself.
type CellConfig struct {
	Input   *InputConfig
	Output  string
	AutoRun bool
	Vars    map[string]any
}

// FieldError describes one invalid field in a cell's merged configuration.
type FieldError struct {
	FieldPath    string
	Message      string
	InvalidValue any
}

// ValidateCell validates a cell's merged annotation map into a CellConfig.
//
// Every offending field yields its own FieldError; validation never stops at
// the first problem. Unknown keys are ignored; the line-comment parser
// picks up arbitrary annotations, including the cell's own name marker.
// A failed validation returns a nil config alongside the errors.
func ValidateCell(merged map[string]any, resolver *Resolver) (*CellConfig, []FieldError) {
	cfg := &CellConfig{AutoRun: true}
	var errs []FieldError

	if raw, ok := merged["input"]; ok && raw != nil {
		input, err := parseInput(raw, resolver)
		if err != nil {
			// Resolution and shape failures collapse to a single error on
			// the input field.
			errs = append(errs, FieldError{FieldPath: "input", Message: err.Error(), InvalidValue: raw})
		} else {
			cfg.Input = input
		}
	}

	if raw, ok := merged["output"]; ok && raw != nil {
		if s, ok := raw.(string); ok {
			cfg.Output = s
		} else {
			errs = append(errs, FieldError{
				FieldPath:    "output",
				Message:      fmt.Sprintf("expected a directory path string, got %T", raw),
				InvalidValue: raw,
			})
		}
	}

	if raw, ok := merged["auto_run"]; ok && raw != nil {
		switch v := raw.(type) {
		case bool:
			cfg.AutoRun = v
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, FieldError{
					FieldPath:    "auto_run",
					Message:      fmt.Sprintf("expected a boolean, got %q", v),
					InvalidValue: raw,
				})
			} else {
				cfg.AutoRun = b
			}
		default:
			errs = append(errs, FieldError{
				FieldPath:    "auto_run",
				Message:      fmt.Sprintf("expected a boolean, got %T", raw),
				InvalidValue: raw,
			})
		}
	}

	if raw, ok := merged["vars"]; ok && raw != nil {
		if m, ok := raw.(map[string]any); ok {
			cfg.Vars = m
		} else {
			errs = append(errs, FieldError{
				FieldPath:    "vars",
				Message:      fmt.Sprintf("expected a mapping, got %T", raw),
				InvalidValue: raw,
			})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

// parseInput normalizes the raw `input` value, in precedence order:
//
//  1. a resolved-shape mapping passes through unchanged
//  2. a bare string resolves its backend from the connection-string shape
//  3. a single-entry mapping {backend: conn} is used directly; backend
//     existence is not checked at this stage
//  4. a multi-entry mapping is ambiguous and rejected
//  5. anything else is rejected
func parseInput(raw any, resolver *Resolver) (*InputConfig, error) {
	switch v := raw.(type) {
	case string:
		backend, err := resolver.Resolve(v)
		if err != nil {
			return nil, err
		}
		return &InputConfig{BackendName: backend, ConnectionString: v}, nil

	case map[string]any:
		if backend, ok := v["backend_name"].(string); ok {
			conn, _ := v["connection_string"].(string)
			return &InputConfig{BackendName: backend, ConnectionString: conn}, nil
		}
		if len(v) != 1 {
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return nil, fmt.Errorf(
				"explicit input config must have exactly one backend, got %d: %v", len(v), keys)
		}
		for backend, conn := range v {
			return &InputConfig{BackendName: backend, ConnectionString: fmt.Sprintf("%v", conn)}, nil
		}
		return nil, nil // unreachable

	default:
		return nil, fmt.Errorf("invalid input format: expected string or mapping, got %T", raw)
	}
}
