package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is an effect configuration file: default values plus the
// schema they are validated against
type Document struct {
	Defaults map[string]any `yaml:"defaults"`
	Schema   Schema         `yaml:"schema"`
}

// LoadDocument parses a YAML configuration document
func LoadDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse document: %w", err)
	}
	if doc.Defaults == nil {
		doc.Defaults = map[string]any{}
	}
	if doc.Schema == nil {
		doc.Schema = Schema{}
	}
	return &doc, nil
}
