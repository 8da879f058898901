package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/axonops/cqltable/internal/logger"
)

// DefaultPosition is used for key components registered without a position.
const DefaultPosition = 1

// Builder accumulates column and key declarations for one table. Calls may
// arrive in any order; everything is merged and validated by Build.
type Builder struct {
	typeName string
	name     string
	keyspace string
	options  string

	columns     []Column
	columnIndex map[string]int
	statics     []string

	partition map[int]string
	cluster   map[int]ClusterKey

	errs []error
}

// NewBuilder starts a table description for the given type name. The table
// name is derived with SnakeCase.
func NewBuilder(typeName string) *Builder {
	return &Builder{
		typeName:    typeName,
		name:        SnakeCase(typeName),
		columnIndex: make(map[string]int),
		partition:   make(map[int]string),
		cluster:     make(map[int]ClusterKey),
	}
}

// TableName returns the derived table name.
func (b *Builder) TableName() string { return b.name }

// Column registers a column. Registering the same name again replaces the
// type and keeps the original declaration slot.
func (b *Builder) Column(name, cqlType string) *Builder {
	if name == "" {
		b.fail("column with empty name")
		return b
	}
	if i, ok := b.columnIndex[name]; ok {
		b.columns[i].Type = cqlType
		return b
	}
	b.columnIndex[name] = len(b.columns)
	b.columns = append(b.columns, Column{Name: name, Type: cqlType})
	return b
}

// Static marks a column as static. Repeated calls are harmless.
func (b *Builder) Static(name string) *Builder {
	b.statics = append(b.statics, name)
	return b
}

// PartitionKey registers a partition key component. A position <= 0 selects
// DefaultPosition. A later registration at the same position replaces the
// earlier one.
func (b *Builder) PartitionKey(name string, position int) *Builder {
	if position <= 0 {
		position = DefaultPosition
	}
	if prev, ok := b.partition[position]; ok && prev != name {
		logger.DebugfToFile("Builder", "%s: partition key position %d reassigned from %q to %q",
			b.name, position, prev, name)
	}
	b.partition[position] = name
	return b
}

// ClusteringKey registers a clustering key component. An empty order selects
// Desc and a position <= 0 selects DefaultPosition. Collisions behave like
// PartitionKey.
func (b *Builder) ClusteringKey(name string, order Order, position int) *Builder {
	o, err := ParseOrder(string(order))
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("clustering key %q: %w", name, err))
		return b
	}
	if position <= 0 {
		position = DefaultPosition
	}
	if prev, ok := b.cluster[position]; ok && prev.Name != name {
		logger.DebugfToFile("Builder", "%s: clustering key position %d reassigned from %q to %q",
			b.name, position, prev.Name, name)
	}
	b.cluster[position] = ClusterKey{Name: name, Order: o}
	return b
}

// Keyspace sets the keyspace.
func (b *Builder) Keyspace(keyspace string) *Builder {
	b.keyspace = keyspace
	return b
}

// Options sets the '|'-delimited table options.
func (b *Builder) Options(options string) *Builder {
	b.options = options
	return b
}

func (b *Builder) fail(format string, args ...interface{}) {
	b.errs = append(b.errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidSchema}, args...)...))
}

// Build validates the accumulated declarations and returns the table.
func (b *Builder) Build() (*Table, error) {
	errs := append([]error(nil), b.errs...)
	failf := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidSchema}, args...)...))
	}

	if len(b.columns) == 0 {
		failf("no columns declared")
	}
	if len(b.partition) == 0 {
		failf("no partition key declared")
	}

	columns := make([]Column, len(b.columns))
	copy(columns, b.columns)
	types := make(map[string]*CQLType, len(columns))
	for _, c := range columns {
		if c.Type == "" {
			failf("column %q has no type", c.Name)
			continue
		}
		typ, err := ParseCQLType(c.Type)
		if err != nil {
			failf("column %q: %v", c.Name, err)
			continue
		}
		types[c.Name] = typ
	}

	keyIndex := make(map[string]bool)
	partitionKeys := make([]string, 0, len(b.partition))
	for _, pos := range sortedPositions(b.partition) {
		name := b.partition[pos]
		if _, ok := b.columnIndex[name]; !ok {
			failf("partition key %q is not a declared column", name)
		}
		if keyIndex[name] {
			failf("partition key %q registered at more than one position", name)
		}
		keyIndex[name] = true
		partitionKeys = append(partitionKeys, name)
	}

	clusterKeys := make([]ClusterKey, 0, len(b.cluster))
	seenCluster := make(map[string]bool)
	for _, pos := range sortedPositions(b.cluster) {
		ck := b.cluster[pos]
		if _, ok := b.columnIndex[ck.Name]; !ok {
			failf("clustering key %q is not a declared column", ck.Name)
		}
		if seenCluster[ck.Name] {
			failf("clustering key %q registered at more than one position", ck.Name)
		} else if keyIndex[ck.Name] {
			failf("column %q is both a partition key and a clustering key", ck.Name)
		}
		seenCluster[ck.Name] = true
		keyIndex[ck.Name] = true
		clusterKeys = append(clusterKeys, ck)
	}

	for _, c := range columns {
		if typ, ok := types[c.Name]; ok && keyIndex[c.Name] && typ.IsCollection() && !typ.Frozen {
			failf("key column %q has non-frozen collection type %s", c.Name, typ)
		}
	}

	for _, name := range b.statics {
		i, ok := b.columnIndex[name]
		if !ok {
			failf("static column %q is not a declared column", name)
			continue
		}
		if keyIndex[name] {
			failf("key column %q cannot be static", name)
			continue
		}
		columns[i].Static = true
	}

	if len(errs) > 0 {
		err := fmt.Errorf("table %s: %w", b.name, errors.Join(errs...))
		logger.DebugfToFile("Builder", "build failed: %v", err)
		return nil, err
	}

	t := &Table{
		name:          b.name,
		keyspace:      b.keyspace,
		options:       b.options,
		columns:       columns,
		partitionKeys: partitionKeys,
		clusterKeys:   clusterKeys,
		keyIndex:      keyIndex,
	}
	logger.DebugfToFile("Builder", "built %s", t)
	return t, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Table {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

func sortedPositions[V any](m map[int]V) []int {
	positions := make([]int, 0, len(m))
	for pos := range m {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}
