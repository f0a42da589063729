package config

import (
	"errors"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

var (
	ErrGeneratedSchemaIsNil = errors.New("generated JSON Schema is nil")
)

// JSONSchema generates the JSON Schema for config.yaml.
func JSONSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		FieldNameTag: "yaml",
	}
	schema := r.Reflect(&Config{})

	if schema == nil {
		return nil, ErrGeneratedSchemaIsNil
	}

	return schema.MarshalJSON()
}

// Dump renders the effective config as YAML. Secrets are omitted.
func Dump(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
