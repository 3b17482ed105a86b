package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/assets"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/schema"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/versioning"
)

// Target kinds a command plugin can accept.
const (
	TargetPath = "path"
	TargetURL  = "url"
	TargetHost = "host"
)

// ManifestPattern matches plugin manifests below a plugin directory.
const ManifestPattern = "**/*.plugin.{yaml,yml,json,toml}"

// Manifest declares an external command as a plugin. The last token of
// Command is the target placeholder.
type Manifest struct {
	Name            string         `json:"name"`
	Version         string         `json:"version"`
	Description     string         `json:"description,omitempty"`
	Dependencies    []string       `json:"dependencies,omitempty"`
	Command         []string       `json:"command"`
	Target          string         `json:"target,omitempty"`
	AcceptExitCodes []int          `json:"accept_exit_codes,omitempty"`
	OutputKey       string         `json:"output_key,omitempty"`
	Timeout         string         `json:"timeout,omitempty"`
	ConfigSchema    map[string]any `json:"config_schema,omitempty"`

	// Path is the file the manifest was read from.
	Path string `json:"-"`

	timeout time.Duration
}

// TimeoutDuration returns the parsed per-invocation timeout, zero when unset.
func (m *Manifest) TimeoutDuration() time.Duration { return m.timeout }

// LoadManifest reads, validates and decodes a manifest file. The format is
// chosen by extension.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- manifests come from the configured plugin directory
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}
	m, err := ParseManifest(data, filepath.Ext(path))
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}
	m.Path = path
	return m, nil
}

// ParseManifest decodes and validates manifest bytes in the format named by ext.
func ParseManifest(data []byte, ext string) (*Manifest, error) {
	var doc any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
		doc = m
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", ext)
	}

	res, err := schema.Validate(doc, assets.SchemaPluginManifest)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, fmt.Errorf("schema validation failed: %s", res.Summary())
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if _, err := versioning.Parse(m.Version); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	if m.Timeout != "" {
		if m.timeout, err = time.ParseDuration(m.Timeout); err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}
	}
	if m.Target == "" {
		m.Target = TargetPath
	}
	if m.OutputKey == "" {
		m.OutputKey = NormalizeName(m.Name) + "_output"
	}
	return &m, nil
}
