package cql

import "strings"

type projectionKind int

const (
	projectAll projectionKind = iota
	projectCount
	projectColumns
)

// Projection selects what a SELECT template returns. It is applied per call,
// templates are generated once with a literal '*'.
type Projection struct {
	kind    projectionKind
	columns []string
}

var (
	// All selects every column.
	All = Projection{kind: projectAll}
	// Count selects the row count as "count".
	Count = Projection{kind: projectCount}
)

// Columns selects the named columns, replacing '*' by the comma-joined list.
// With no names it behaves like All rather than rendering an empty select
// list.
func Columns(names ...string) Projection {
	if len(names) == 0 {
		return All
	}
	return Projection{kind: projectColumns, columns: append([]string(nil), names...)}
}

// Expr returns the select expression that replaces '*'.
func (p Projection) Expr() string {
	switch p.kind {
	case projectCount:
		return "count(*) as count"
	case projectColumns:
		return strings.Join(p.columns, ",")
	default:
		return "*"
	}
}

func (p Projection) String() string {
	switch p.kind {
	case projectCount:
		return "Count"
	case projectColumns:
		return "Columns(" + strings.Join(p.columns, ",") + ")"
	default:
		return "All"
	}
}

// apply substitutes the projection for the first '*' of a select template.
func (p Projection) apply(template string) string {
	if p.kind == projectAll {
		return template
	}
	return strings.Replace(template, "*", p.Expr(), 1)
}
