// Package assets exposes the schemas, prompt templates and default policy
// compiled into the bughunter binary.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed embedded_templates
var Templates embed.FS

//go:embed embedded_schemas
var Schemas embed.FS

//go:embed embedded_policies
var Policies embed.FS

func GetTemplatesFS() fs.FS { return sub(Templates, "embedded_templates") }

func GetSchemasFS() fs.FS { return sub(Schemas, "embedded_schemas") }

func GetPoliciesFS() fs.FS { return sub(Policies, "embedded_policies") }

func sub(fsys embed.FS, dir string) fs.FS {
	if s, err := fs.Sub(fsys, dir); err == nil {
		return s
	}
	return fsys
}

// Template returns a prompt template by name, e.g. "analyze".
func Template(name string) ([]byte, error) {
	return fs.ReadFile(GetTemplatesFS(), "prompts/"+name+".hbs")
}

// DefaultSecurityPolicy returns the policy used when no policy file is configured.
func DefaultSecurityPolicy() []byte {
	data, _ := fs.ReadFile(GetPoliciesFS(), "security_policy.yaml")
	return data
}

// PolicyModule returns the rego module that evaluates policy matches.
func PolicyModule() []byte {
	data, _ := fs.ReadFile(GetPoliciesFS(), "policy.rego")
	return data
}

// GetEmbeddedAsset retrieves an embedded asset by path relative to any of
// the asset roots.
func GetEmbeddedAsset(path string) ([]byte, error) {
	for _, fsys := range []fs.FS{GetTemplatesFS(), GetSchemasFS(), GetPoliciesFS()} {
		if data, err := fs.ReadFile(fsys, path); err == nil {
			return data, nil
		}
	}
	return nil, fs.ErrNotExist
}
