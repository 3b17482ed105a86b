// Package schema validates documents against the embedded JSON Schemas and
// against schemas supplied at run time by plugins.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/assets"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Path    string `json:"path,omitempty"` // dotted path, e.g. "0.config.ports"
	Message string `json:"message"`
}

// Result holds the validation result.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Summary joins all errors into one line.
func (r *Result) Summary() string {
	if r == nil || r.Valid {
		return ""
	}
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Path + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

var (
	registryOnce sync.Once
	registry     map[string]*gojsonschema.Schema
	registryErr  map[string]error
)

func loadRegistry() {
	registry = make(map[string]*gojsonschema.Schema)
	registryErr = make(map[string]error)
	for _, info := range assets.GetSchemaNames() {
		raw, _ := assets.GetSchema(info.Path)
		s, err := compileYAML(raw)
		if err != nil {
			registryErr[info.Name] = err
			continue
		}
		registry[info.Name] = s
	}
}

// compileYAML converts a YAML (or JSON) schema document to JSON and compiles it.
func compileYAML(raw []byte) (*gojsonschema.Schema, error) {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return Compile(doc)
}

// Compile compiles an already decoded schema document.
func Compile(doc interface{}) (*gojsonschema.Schema, error) {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
}

// Validate validates data against the named embedded schema.
func Validate(data interface{}, schemaName string) (*Result, error) {
	registryOnce.Do(loadRegistry)
	s, ok := registry[schemaName]
	if !ok {
		if err := registryErr[schemaName]; err != nil {
			return nil, fmt.Errorf("schema %s failed to compile: %w", schemaName, err)
		}
		return nil, fmt.Errorf("schema %s not found in registry", schemaName)
	}
	return ValidateWith(s, data)
}

// ValidateDocument compiles schemaDoc and validates data against it. Plugins
// use this for their step configuration schemas.
func ValidateDocument(schemaDoc, data interface{}) (*Result, error) {
	s, err := Compile(schemaDoc)
	if err != nil {
		return nil, err
	}
	return ValidateWith(s, data)
}

// ValidateWith validates data against a compiled schema.
func ValidateWith(s *gojsonschema.Schema, data interface{}) (*Result, error) {
	result, err := s.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	res := &Result{Valid: result.Valid()}
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "" || field == "(root)" {
			field = "root"
		}
		res.Errors = append(res.Errors, ValidationError{Path: field, Message: verr.Description()})
	}
	return res, nil
}
