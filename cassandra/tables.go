package cassandra

import (
	"fmt"
	"strings"

	"github.com/axonops/cqltable/cql"
	"github.com/axonops/cqltable/internal/logger"
	"github.com/axonops/cqltable/schema"
)

// TableExists checks system_schema for a table
func (s *Session) TableExists(keyspace, table string) (bool, error) {
	iter := s.Query(`SELECT table_name FROM system_schema.tables WHERE keyspace_name = ? AND table_name = ?`,
		keyspace, table).Iter()
	var name string
	found := iter.Scan(&name)
	if err := iter.Close(); err != nil {
		return false, fmt.Errorf("failed to read system_schema.tables: %w", err)
	}
	return found, nil
}

// ListTables returns the table names of a keyspace
func (s *Session) ListTables(keyspace string) ([]string, error) {
	iter := s.Query(`SELECT table_name FROM system_schema.tables WHERE keyspace_name = ?`, keyspace).Iter()
	var tables []string
	var name string
	for iter.Scan(&name) {
		tables = append(tables, name)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list tables of %s: %w", keyspace, err)
	}
	return tables, nil
}

// CreateTable creates t if missing and confirms it is visible in
// system_schema afterwards.
func (s *Session) CreateTable(t *schema.Table) error {
	if err := s.ExecuteDDL(cql.CreateTable(t, cql.WithOptionsClause())); err != nil {
		return err
	}
	ok, err := s.TableExists(t.Keyspace(), t.Name())
	if err != nil {
		return err
	}
	if !ok {
		available, _ := s.ListTables(t.Keyspace())
		availableStr := "none"
		if len(available) > 0 {
			availableStr = strings.Join(available, ", ")
		}
		return fmt.Errorf("table %s not found after CREATE TABLE. Available tables: %s", t.QualifiedName(), availableStr)
	}
	logger.DebugfToFile("CreateTable", "%s ready (fingerprint %016x)", t.QualifiedName(), t.Fingerprint())
	return nil
}

// DropTable drops t if present.
func (s *Session) DropTable(t *schema.Table) error {
	return s.ExecuteDDL(cql.DropTable(t))
}
