package cql

import (
	"fmt"
	"strings"

	"github.com/axonops/cqltable/schema"
)

// DDLOption adjusts the output of CreateTable.
type DDLOption func(*ddlSettings)

type ddlSettings struct {
	withOptions bool
}

// WithOptionsClause introduces the options of a table without clustering keys
// with WITH instead of AND. Cassandra only accepts the WITH form.
func WithOptionsClause() DDLOption {
	return func(s *ddlSettings) { s.withOptions = true }
}

// CreateTable renders the CREATE TABLE IF NOT EXISTS statement of a table.
// With clustering keys the options follow the CLUSTERING ORDER BY clause.
// Without clustering keys they are prefixed with AND unless
// WithOptionsClause is given.
func CreateTable(t *schema.Table, opts ...DDLOption) string {
	var settings ddlSettings
	for _, opt := range opts {
		opt(&settings)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (", t.QualifiedName()))

	// Column definitions, declaration order
	defs := make([]string, 0, len(t.Columns()))
	for _, col := range t.Columns() {
		def := col.Name + " " + strings.ToUpper(col.Type)
		if col.Static {
			def += " STATIC"
		}
		defs = append(defs, def)
	}
	sb.WriteString(strings.Join(defs, ","))

	partitionKey := strings.Join(t.PartitionKeys(), ",")
	clusterKeys := t.ClusterKeys()
	if len(clusterKeys) > 0 {
		sb.WriteString(fmt.Sprintf(", PRIMARY KEY ((%s), %s))", partitionKey, strings.Join(t.ClusterKeyNames(), ",")))
	} else {
		sb.WriteString(fmt.Sprintf(", PRIMARY KEY (%s))", partitionKey))
	}

	// Table options
	options := t.OptionList()
	switch {
	case len(clusterKeys) > 0:
		order := make([]string, len(clusterKeys))
		for i, ck := range clusterKeys {
			order[i] = ck.Name + " " + string(ck.Order)
		}
		sb.WriteString(fmt.Sprintf(" WITH CLUSTERING ORDER BY (%s)", strings.Join(order, ", ")))
		for _, opt := range options {
			sb.WriteString(" AND " + opt)
		}
	case len(options) > 0 && settings.withOptions:
		sb.WriteString(" WITH " + strings.Join(options, " AND "))
	case len(options) > 0:
		sb.WriteString(" AND " + strings.Join(options, " AND "))
	}

	sb.WriteString(";")
	return sb.String()
}

// DropTable renders the DROP TABLE IF EXISTS statement of a table.
func DropTable(t *schema.Table) string {
	return "DROP TABLE IF EXISTS " + t.QualifiedName()
}
