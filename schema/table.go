package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// ErrInvalidSchema is wrapped by every error reported while building a table
// description, whichever ingestion path produced it.
var ErrInvalidSchema = errors.New("invalid table schema")

// Order is the sort direction of a clustering key.
type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

// ParseOrder normalises a clustering order. An empty string selects Desc.
func ParseOrder(s string) (Order, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return Desc, nil
	case "ASC":
		return Asc, nil
	case "DESC":
		return Desc, nil
	}
	return "", fmt.Errorf("%w: clustering order %q must be ASC or DESC", ErrInvalidSchema, s)
}

// Column is a declared table column.
type Column struct {
	Name   string
	Type   string
	Static bool
}

// ClusterKey is one clustering key component.
type ClusterKey struct {
	Name  string
	Order Order
}

// Table is the immutable description of one table. Use a Builder to create it.
type Table struct {
	name          string
	keyspace      string
	options       string
	columns       []Column
	partitionKeys []string
	clusterKeys   []ClusterKey
	keyIndex      map[string]bool
}

func (t *Table) Name() string     { return t.name }
func (t *Table) Keyspace() string { return t.keyspace }

// Options returns the raw '|'-delimited options string.
func (t *Table) Options() string { return t.options }

// QualifiedName returns "<keyspace>.<name>".
func (t *Table) QualifiedName() string {
	return t.keyspace + "." + t.name
}

// Columns returns the columns in declaration order.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PartitionKeys returns the partition key names ordered by position.
func (t *Table) PartitionKeys() []string {
	out := make([]string, len(t.partitionKeys))
	copy(out, t.partitionKeys)
	return out
}

// ClusterKeys returns the clustering keys ordered by position.
func (t *Table) ClusterKeys() []ClusterKey {
	out := make([]ClusterKey, len(t.clusterKeys))
	copy(out, t.clusterKeys)
	return out
}

// ClusterKeyNames returns the clustering key names ordered by position.
func (t *Table) ClusterKeyNames() []string {
	out := make([]string, len(t.clusterKeys))
	for i, ck := range t.clusterKeys {
		out[i] = ck.Name
	}
	return out
}

// IsKey reports whether name is a partition or clustering key.
func (t *Table) IsKey(name string) bool {
	return t.keyIndex[name]
}

// UpdatableColumns returns every non-key column in declaration order.
func (t *Table) UpdatableColumns() []string {
	var out []string
	for _, c := range t.columns {
		if !t.keyIndex[c.Name] {
			out = append(out, c.Name)
		}
	}
	return out
}

// OptionList splits the options string on '|', trimming each segment and
// dropping empty ones.
func (t *Table) OptionList() []string {
	var out []string
	for _, opt := range strings.Split(t.options, "|") {
		if opt = strings.TrimSpace(opt); opt != "" {
			out = append(out, opt)
		}
	}
	return out
}

// String renders a canonical one-line description of the table.
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString(t.QualifiedName())
	sb.WriteString(" (")
	for i, c := range t.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Name)
		sb.WriteByte(' ')
		sb.WriteString(strings.ToUpper(c.Type))
		if c.Static {
			sb.WriteString(" STATIC")
		}
	}
	sb.WriteString(") partition=[")
	sb.WriteString(strings.Join(t.partitionKeys, ","))
	sb.WriteString("] clustering=[")
	for i, ck := range t.clusterKeys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(ck.Name)
		sb.WriteByte(' ')
		sb.WriteString(string(ck.Order))
	}
	sb.WriteString("] options=[")
	sb.WriteString(strings.Join(t.OptionList(), " | "))
	sb.WriteString("]")
	return sb.String()
}

// Fingerprint hashes the canonical description. Two tables with the same
// fingerprint generate identical statements.
func (t *Table) Fingerprint() uint64 {
	return xxh3.HashString(t.String())
}
