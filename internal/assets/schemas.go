package assets

import (
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaInfo holds schema metadata.
type SchemaInfo struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Draft string `json:"draft"`
}

// Known schema names.
const (
	SchemaWorkflow       = "workflow-v1.0.0"
	SchemaPluginManifest = "plugin-manifest-v1.0.0"
	SchemaSecurityPolicy = "security-policy-v1.0.0"
)

var knownSchemas = map[string]string{
	SchemaWorkflow:       "workflow/v1.0.0/workflow.yaml",
	SchemaPluginManifest: "plugin/v1.0.0/manifest.yaml",
	SchemaSecurityPolicy: "policy/v1.0.0/security-policy.yaml",
}

// GetSchema returns the embedded schema bytes by path relative to the schema root.
func GetSchema(relPath string) ([]byte, bool) {
	data, err := fs.ReadFile(GetSchemasFS(), relPath)
	return data, err == nil
}

// GetSchemaByName returns the embedded schema registered under name.
func GetSchemaByName(name string) ([]byte, bool) {
	path, ok := knownSchemas[name]
	if !ok {
		return nil, false
	}
	return GetSchema(path)
}

// GetSchemaNames lists the embedded schemas, sorted by name.
func GetSchemaNames() []SchemaInfo {
	infos := make([]SchemaInfo, 0, len(knownSchemas))
	for name, path := range knownSchemas {
		if _, ok := GetSchema(path); ok {
			infos = append(infos, SchemaInfo{Name: name, Path: path, Draft: detectDraft(path)})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// detectDraft reads the $schema key; YAML is a superset of JSON so one decoder covers both.
func detectDraft(path string) string {
	const unknown = "unknown"
	data, ok := GetSchema(path)
	if !ok {
		return unknown
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return unknown
	}
	v, _ := doc["$schema"].(string)
	switch {
	case strings.Contains(v, "draft-07"):
		return "draft-07"
	case strings.Contains(v, "2020-12"):
		return "draft-2020-12"
	}
	return unknown
}
