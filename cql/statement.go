package cql

import "strings"

// Statement is a query together with the values bound to its placeholders,
// in placeholder order.
type Statement struct {
	Query  string
	Values []interface{}
}

func (s Statement) String() string {
	return "query:" + s.Query
}

// Placeholders counts the '?' markers in a query.
func Placeholders(query string) int {
	return strings.Count(query, "?")
}
