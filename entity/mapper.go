package entity

import (
	"fmt"
	"reflect"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/axonops/cqltable/cql"
	"github.com/axonops/cqltable/internal/logger"
	"github.com/axonops/cqltable/schema"
)

// TableDefinition carries the table-level attributes of an entity type.
type TableDefinition struct {
	Keyspace string
	// Options is a '|'-delimited list of CQL table options.
	Options string
}

// TableDefiner is implemented by entity types that declare a keyspace or
// table options. It is called on a zero value.
type TableDefiner interface {
	TableDefinition() TableDefinition
}

const mapperCacheSize = 256

var mappers *lru.Cache[reflect.Type, any]

func init() {
	var err error
	mappers, err = lru.New[reflect.Type, any](mapperCacheSize)
	if err != nil {
		panic(fmt.Sprintf("entity: mapper cache: %v", err))
	}
}

// Mapper produces statements for values of the struct type T.
type Mapper[T any] struct {
	typ       reflect.Type
	table     *schema.Table
	templates *cql.Templates
	fields    map[string][]int // column name -> field index
}

// For returns the mapper of T, building it from T's `cql` field tags on first
// use. T must be a struct type.
func For[T any]() (*Mapper[T], error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if cached, ok := mappers.Get(t); ok {
		return cached.(*Mapper[T]), nil
	}

	m, err := newMapper[T](t)
	if err != nil {
		return nil, err
	}
	mappers.Add(t, m)
	return m, nil
}

// MustFor is like For but panics on error. It suits package-level variables.
func MustFor[T any]() *Mapper[T] {
	m, err := For[T]()
	if err != nil {
		panic(err)
	}
	return m
}

func newMapper[T any](t reflect.Type) (*Mapper[T], error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: entity type %s is a %s, not a struct", schema.ErrInvalidSchema, t, t.Kind())
	}
	if t.Name() == "" {
		return nil, fmt.Errorf("%w: entity type %s has no name", schema.ErrInvalidSchema, t)
	}
	if strings.ContainsAny(t.Name(), "[]") {
		return nil, fmt.Errorf("%w: entity type %s is a generic instantiation", schema.ErrInvalidSchema, t)
	}
	logger.DebugfToFile("Mapper", "building mapper for %s", t)

	b := schema.NewBuilder(t.Name())
	if def, ok := reflect.New(t).Interface().(TableDefiner); ok {
		td := def.TableDefinition()
		b.Keyspace(td.Keyspace).Options(td.Options)
	}

	fields := make(map[string][]int)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		raw, tagged := f.Tag.Lookup(TagName)
		if !tagged || raw == "-" {
			continue
		}
		if f.Anonymous || !f.IsExported() {
			return nil, fmt.Errorf("%w: %s.%s: only exported, non-embedded fields can be columns",
				schema.ErrInvalidSchema, t.Name(), f.Name)
		}

		ct, err := parseTag(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", schema.ErrInvalidSchema, t.Name(), f.Name, err)
		}
		if ct.typ == "" {
			return nil, fmt.Errorf("%w: %s.%s: tag has no type", schema.ErrInvalidSchema, t.Name(), f.Name)
		}

		name := ct.name
		if name == "" {
			name = schema.ColumnName(f.Name)
		}
		if _, dup := fields[name]; dup {
			return nil, fmt.Errorf("%w: %s.%s: column %q is mapped by more than one field",
				schema.ErrInvalidSchema, t.Name(), f.Name, name)
		}
		fields[name] = f.Index

		b.Column(name, ct.typ)
		if ct.static {
			b.Static(name)
		}
		if ct.partition {
			b.PartitionKey(name, ct.partitionPos)
		}
		if ct.cluster {
			b.ClusteringKey(name, schema.Order(ct.clusterOrder), ct.clusterPos)
		}
	}

	table, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", t, err)
	}

	return &Mapper[T]{
		typ:       t,
		table:     table,
		templates: cql.Generate(table),
		fields:    fields,
	}, nil
}

// Table returns the table model built from T's tags.
func (m *Mapper[T]) Table() *schema.Table { return m.table }

// Templates returns the statement templates of T's table.
func (m *Mapper[T]) Templates() *cql.Templates { return m.templates }

// KeySpace returns the keyspace declared by T's TableDefinition.
func (m *Mapper[T]) KeySpace() string { return m.table.Keyspace() }

// TableName returns the table name derived from T's type name.
func (m *Mapper[T]) TableName() string { return m.table.Name() }

// CreateTableCQL returns the CREATE TABLE IF NOT EXISTS statement of T.
func (m *Mapper[T]) CreateTableCQL() string { return m.templates.CreateTable() }

// DropTableCQL returns the DROP TABLE IF EXISTS statement of T.
func (m *Mapper[T]) DropTableCQL() string { return m.templates.DropTable() }

// The remaining template accessors mirror cql.Templates.

func (m *Mapper[T]) DeleteByPrimaryKeys() string {
	return m.templates.DeleteByPrimaryKeys()
}

func (m *Mapper[T]) DeleteByPrimaryAndClusterKeys() string {
	return m.templates.DeleteByPrimaryAndClusterKeys()
}

func (m *Mapper[T]) SelectByPrimaryKeys(p cql.Projection) string {
	return m.templates.SelectByPrimaryKeys(p)
}

func (m *Mapper[T]) SelectByPrimaryAndClusterKeys(p cql.Projection) string {
	return m.templates.SelectByPrimaryAndClusterKeys(p)
}

func (m *Mapper[T]) UpdateByPrimaryKeys(columns []string) string {
	return m.templates.UpdateByPrimaryKeys(columns)
}

func (m *Mapper[T]) UpdateByPrimaryAndClusterKeys(columns []string) string {
	return m.templates.UpdateByPrimaryAndClusterKeys(columns)
}

// StoreQuery returns the insert of every column of v.
func (m *Mapper[T]) StoreQuery(v *T) cql.Statement {
	query, bindings := m.templates.Insert()
	return cql.Statement{Query: query, Values: m.values(v, bindings)}
}

// UpdateQuery returns the update of every non-key column of v. It fails with
// a *cql.NoUpdatableColumnsError when T has only key columns.
func (m *Mapper[T]) UpdateQuery(v *T) (cql.Statement, error) {
	query, bindings, err := m.templates.UpdateQuery()
	if err != nil {
		return cql.Statement{}, err
	}
	return cql.Statement{Query: query, Values: m.values(v, bindings)}, nil
}

// DeleteQuery returns the delete of the row identified by v's keys.
func (m *Mapper[T]) DeleteQuery(v *T) cql.Statement {
	query, bindings := m.templates.DeleteQuery()
	return cql.Statement{Query: query, Values: m.values(v, bindings)}
}

// PartitionKeyValues returns v's partition key values in position order.
func (m *Mapper[T]) PartitionKeyValues(v *T) []interface{} {
	return m.values(v, m.table.PartitionKeys())
}

// Values returns the values of the named columns of v.
func (m *Mapper[T]) Values(v *T, columns ...string) ([]interface{}, error) {
	for _, c := range columns {
		if _, ok := m.fields[c]; !ok {
			return nil, fmt.Errorf("%s has no column %q", m.typ, c)
		}
	}
	return m.values(v, columns), nil
}

func (m *Mapper[T]) values(v *T, columns []string) []interface{} {
	rv := reflect.ValueOf(v).Elem()
	out := make([]interface{}, len(columns))
	for i, c := range columns {
		out[i] = rv.FieldByIndex(m.fields[c]).Interface()
	}
	return out
}
