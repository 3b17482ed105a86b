package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/assets"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/schema"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// LoadFile reads a workflow from a .json, .yaml or .yml file.
func LoadFile(path string) ([]Step, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, &InvalidWorkflowFileError{Path: path, Reason: fmt.Sprintf("unsupported extension %q (use .json, .yaml or .yml)", ext)}
	}

	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied workflow path
	if err != nil {
		return nil, &InvalidWorkflowFileError{Path: path, Reason: "cannot read file", Err: err}
	}

	steps, err := Parse(data, ext)
	if err != nil {
		var wf *InvalidWorkflowFileError
		if errors.As(err, &wf) {
			wf.Path = path
		}
		return nil, err
	}
	logger.Debug("workflow loaded", logger.String("path", path), logger.Int("steps", len(steps)))
	return steps, nil
}

// Parse decodes workflow bytes in the format named by ext and validates the
// structure against the embedded workflow schema.
func Parse(data []byte, ext string) ([]Step, error) {
	var doc any
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &InvalidWorkflowFileError{Reason: "malformed JSON", Err: err}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &InvalidWorkflowFileError{Reason: "malformed YAML", Err: err}
		}
	default:
		return nil, &InvalidWorkflowFileError{Reason: fmt.Sprintf("unsupported extension %q", ext)}
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, &InvalidWorkflowFileError{Reason: "top level must be a list of steps"}
	}

	res, err := schema.Validate(items, assets.SchemaWorkflow)
	if err != nil {
		return nil, &InvalidWorkflowFileError{Reason: "schema unavailable", Err: err}
	}
	if !res.Valid {
		return nil, &InvalidWorkflowFileError{Reason: "schema validation failed: " + res.Summary()}
	}

	steps := make([]Step, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]any)
		step := Step{}
		step.Plugin, _ = m["plugin"].(string)
		step.Name, _ = m["name"].(string)
		step.Config, _ = m["config"].(map[string]any)
		steps = append(steps, step)
	}
	return steps, nil
}
