package cql

import (
	"strings"

	"github.com/axonops/cqltable/schema"
)

// columnsPlaceholder marks where the SET assignments of a generic update go.
const columnsPlaceholder = ":columns"

// Templates holds every statement generated for one table. It is built once
// by Generate and is safe for concurrent use.
type Templates struct {
	table *schema.Table

	createTable string
	dropTable   string

	selectByPK     string
	selectByPKCK   string
	updateByPK     string
	updateByPKCK   string
	deleteByPK     string
	deleteByPKCK   string
	insert         string
	insertBindings []string

	update         string
	updateBindings []string
	updateErr      error
	deleteBindings []string
}

// Generate derives the DDL and CRUD templates of a table.
func Generate(t *schema.Table) *Templates {
	pkWhere := whereClause(t.PartitionKeys())
	pkckWhere := pkWhere
	if ck := t.ClusterKeyNames(); len(ck) > 0 {
		pkckWhere = pkWhere + " AND " + whereClause(ck)
	}

	name := t.QualifiedName()
	tpl := &Templates{
		table:        t,
		createTable:  CreateTable(t),
		dropTable:    DropTable(t),
		selectByPK:   "SELECT * FROM " + name + " WHERE " + pkWhere,
		selectByPKCK: "SELECT * FROM " + name + " WHERE " + pkckWhere,
		updateByPK:   "UPDATE " + name + " SET " + columnsPlaceholder + " WHERE " + pkWhere,
		updateByPKCK: "UPDATE " + name + " SET " + columnsPlaceholder + " WHERE " + pkckWhere,
		deleteByPK:   "DELETE FROM " + name + " WHERE " + pkWhere,
		deleteByPKCK: "DELETE FROM " + name + " WHERE " + pkckWhere,
	}

	columns := t.ColumnNames()
	tpl.insert = "INSERT INTO " + name + " (" + strings.Join(columns, ",") + ") VALUES (" + placeholders(len(columns)) + ")"
	tpl.insertBindings = columns

	keys := append(t.PartitionKeys(), t.ClusterKeyNames()...)
	tpl.deleteBindings = keys

	if updatable := t.UpdatableColumns(); len(updatable) > 0 {
		tpl.update = setColumns(tpl.updateByPKCK, updatable)
		tpl.updateBindings = append(append([]string(nil), updatable...), keys...)
	} else {
		tpl.updateErr = &NoUpdatableColumnsError{Table: name}
	}

	return tpl
}

// whereClause renders key restrictions as " k=? " items joined by " AND ".
func whereClause(keys []string) string {
	items := make([]string, len(keys))
	for i, k := range keys {
		items[i] = " " + k + "=? "
	}
	return strings.Join(items, " AND ")
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func setColumns(template string, columns []string) string {
	assignments := make([]string, len(columns))
	for i, c := range columns {
		assignments[i] = " " + c + "=?"
	}
	return strings.Replace(template, columnsPlaceholder, strings.Join(assignments, ","), 1)
}

// Table returns the table the templates were generated for.
func (t *Templates) Table() *schema.Table { return t.table }

// KeySpace returns the keyspace of the table.
func (t *Templates) KeySpace() string { return t.table.Keyspace() }

// TableName returns the derived table name.
func (t *Templates) TableName() string { return t.table.Name() }

// CreateTable returns the CREATE TABLE IF NOT EXISTS statement.
func (t *Templates) CreateTable() string { return t.createTable }

// DropTable returns the DROP TABLE IF EXISTS statement.
func (t *Templates) DropTable() string { return t.dropTable }

// SelectByPrimaryKeys restricts on the partition keys.
func (t *Templates) SelectByPrimaryKeys(p Projection) string {
	return p.apply(t.selectByPK)
}

// SelectByPrimaryAndClusterKeys restricts on the partition and clustering keys.
func (t *Templates) SelectByPrimaryAndClusterKeys(p Projection) string {
	return p.apply(t.selectByPKCK)
}

// UpdateByPrimaryKeys sets the given columns of the rows of one partition.
func (t *Templates) UpdateByPrimaryKeys(columns []string) string {
	return setColumns(t.updateByPK, columns)
}

// UpdateByPrimaryAndClusterKeys sets the given columns of one row.
func (t *Templates) UpdateByPrimaryAndClusterKeys(columns []string) string {
	return setColumns(t.updateByPKCK, columns)
}

// DeleteByPrimaryKeys deletes one partition.
func (t *Templates) DeleteByPrimaryKeys() string { return t.deleteByPK }

// DeleteByPrimaryAndClusterKeys deletes one row.
func (t *Templates) DeleteByPrimaryAndClusterKeys() string { return t.deleteByPKCK }

// Insert returns the insert template and the column bound to each placeholder.
func (t *Templates) Insert() (string, []string) {
	return t.insert, append([]string(nil), t.insertBindings...)
}

// UpdateQuery returns the update of every non-key column of one row, and the
// column bound to each placeholder: SET columns, then partition keys, then
// clustering keys. It fails with a *NoUpdatableColumnsError when every
// column is a key.
func (t *Templates) UpdateQuery() (string, []string, error) {
	if t.updateErr != nil {
		return "", nil, t.updateErr
	}
	return t.update, append([]string(nil), t.updateBindings...), nil
}

// DeleteQuery returns the delete of one row and its bindings: partition keys,
// then clustering keys.
func (t *Templates) DeleteQuery() (string, []string) {
	return t.deleteByPKCK, append([]string(nil), t.deleteBindings...)
}

// Statements returns every generated template under a stable label.
func (t *Templates) Statements() []Named {
	out := []Named{
		{"create_table", t.createTable},
		{"drop_table", t.dropTable},
		{"select_by_primary_keys", t.selectByPK},
		{"select_by_primary_and_cluster_keys", t.selectByPKCK},
		{"update_by_primary_keys", t.updateByPK},
		{"update_by_primary_and_cluster_keys", t.updateByPKCK},
		{"delete_by_primary_keys", t.deleteByPK},
		{"delete_by_primary_and_cluster_keys", t.deleteByPKCK},
		{"insert", t.insert},
	}
	if t.updateErr == nil {
		out = append(out, Named{"update", t.update})
	}
	return out
}

// Named is a labelled statement.
type Named struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}
