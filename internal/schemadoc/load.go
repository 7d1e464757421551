package schemadoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"jsonsqlmirror/internal/schema"
)

func marshalTOML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadFile reads a schema document from path, dispatching on its
// extension (.yaml/.yml, .json, .toml), and merges every table it
// describes into registry.
func LoadFile(path string, registry *schema.Registry) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema document %q: %w", path, err)
	}

	var doc Document
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &doc)
	case ".json":
		err = json.Unmarshal(raw, &doc)
	case ".toml":
		err = toml.Unmarshal(raw, &doc)
	default:
		return &UnsupportedFormatError{Path: path}
	}
	if err != nil {
		return fmt.Errorf("parse schema document %q: %w", path, err)
	}

	for table, tableDoc := range doc.Schemas {
		s, err := fromDoc(table, tableDoc)
		if err != nil {
			return err
		}
		registry.Register(s)
	}
	return nil
}

// SaveFile serializes every table named in tables (all registered tables
// if tables is empty) from registry into a schema document at path, in
// the format its extension names.
func SaveFile(path string, registry *schema.Registry, tables ...string) error {
	if len(tables) == 0 {
		tables = registry.ListTables()
	}

	doc := Document{Schemas: make(map[string]TableDoc, len(tables))}
	for _, table := range tables {
		s := registry.Get(table)
		if s == nil {
			return fmt.Errorf("save schema document: table %q is not registered", table)
		}
		doc.Schemas[table] = toDoc(s)
	}

	var out []byte
	var err error
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		out, err = yaml.Marshal(doc)
	case ".json":
		out, err = json.MarshalIndent(doc, "", "  ")
	case ".toml":
		out, err = marshalTOML(doc)
	default:
		return &UnsupportedFormatError{Path: path}
	}
	if err != nil {
		return fmt.Errorf("encode schema document %q: %w", path, err)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write schema document %q: %w", path, err)
	}
	return nil
}
