package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/axonops/cqltable/internal/logger"
)

// File is a schema description document. JSON documents are accepted too,
// since they are valid YAML.
//
//	tables:
//	  - entity: UserAccount
//	    keyspace: test
//	    options: "default_time_to_live = 0 | gc_grace_seconds = 864000"
//	    columns:
//	      - {name: username, type: text, primary_key: true}
//	      - {name: created, type: timestamp, cluster_key: {order: DESC, position: 1}}
//	      - {name: email, type: text, static: true}
type File struct {
	Tables []TableDef `yaml:"tables"`
}

// TableDef describes one table in a schema file.
type TableDef struct {
	Entity   string      `yaml:"entity"`
	Keyspace string      `yaml:"keyspace"`
	Options  string      `yaml:"options"`
	Columns  []ColumnDef `yaml:"columns"`
}

// ColumnDef describes one column in a schema file.
type ColumnDef struct {
	Name        string  `yaml:"name"`
	Type        string  `yaml:"type"`
	Static      bool    `yaml:"static"`
	PrimaryKey  bool    `yaml:"primary_key"`
	CompoundKey *KeyDef `yaml:"compound_key"`
	ClusterKey  *KeyDef `yaml:"cluster_key"`
}

// KeyDef carries the optional attributes of a key column.
type KeyDef struct {
	Order    string `yaml:"order"`
	Position int    `yaml:"position"`
}

// Decode reads one schema document. Unknown keys are rejected.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return &f, nil
}

// Build builds every table the document describes. It fails on the first
// invalid table.
func (f *File) Build() ([]*Table, error) {
	tables := make([]*Table, 0, len(f.Tables))
	for i, def := range f.Tables {
		t, err := def.Build()
		if err != nil {
			return nil, fmt.Errorf("tables[%d]: %w", i, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Build feeds the description into a Builder.
func (s TableDef) Build() (*Table, error) {
	if s.Entity == "" {
		return nil, fmt.Errorf("%w: table entry without entity name", ErrInvalidSchema)
	}

	b := NewBuilder(s.Entity).Keyspace(s.Keyspace).Options(s.Options)
	for _, c := range s.Columns {
		b.Column(c.Name, c.Type)
		if c.Static {
			b.Static(c.Name)
		}

		if c.PrimaryKey && c.CompoundKey != nil {
			b.fail("column %q sets both primary_key and compound_key", c.Name)
		}
		if c.PrimaryKey {
			b.PartitionKey(c.Name, DefaultPosition)
		}
		if c.CompoundKey != nil {
			if c.CompoundKey.Order != "" {
				b.fail("column %q: compound_key does not take an order", c.Name)
			}
			b.PartitionKey(c.Name, c.CompoundKey.Position)
		}
		if c.ClusterKey != nil {
			b.ClusteringKey(c.Name, Order(c.ClusterKey.Order), c.ClusterKey.Position)
		}
	}
	return b.Build()
}

// LoadFile reads and builds all tables of one schema file.
func LoadFile(path string) ([]*Table, error) {
	data, err := os.ReadFile(path) // #nosec G304: user supplied schema path
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tables, err := f.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.DebugfToFile("LoadFile", "loaded %d table(s) from %s", len(tables), path)
	return tables, nil
}

// LoadPaths loads every schema file named directly or found (non-recursively)
// in a named directory. Directory entries are read in lexical order and only
// .yaml, .yml and .json files are considered.
func LoadPaths(paths ...string) ([]*Table, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("schema path %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("schema directory %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() || !isSchemaFile(e.Name()) {
				continue
			}
			found = append(found, filepath.Join(p, e.Name()))
		}
		sort.Strings(found)
		files = append(files, found...)
	}

	var tables []*Table
	seen := make(map[string]string)
	for _, path := range files {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, t := range loaded {
			if prev, ok := seen[t.QualifiedName()]; ok {
				return nil, fmt.Errorf("%w: table %s declared in both %s and %s",
					ErrInvalidSchema, t.QualifiedName(), prev, path)
			}
			seen[t.QualifiedName()] = path
		}
		tables = append(tables, loaded...)
	}
	return tables, nil
}

func isSchemaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
