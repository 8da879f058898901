package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		expected columnTag
	}{
		{
			name:     "plain column",
			tag:      "type=text",
			expected: columnTag{typ: "text"},
		},
		{
			name:     "primary key",
			tag:      "type=text,primary_key",
			expected: columnTag{typ: "text", partition: true, partitionPos: 1},
		},
		{
			name:     "compound key",
			tag:      "type=int, compound_key(position=2)",
			expected: columnTag{typ: "int", partition: true, partitionPos: 2},
		},
		{
			name:     "cluster key with params",
			tag:      "type=timestamp,cluster_key(order=ASC,position=3)",
			expected: columnTag{typ: "timestamp", cluster: true, clusterOrder: "ASC", clusterPos: 3},
		},
		{
			name:     "bare cluster key",
			tag:      "cluster_key,type=timeuuid",
			expected: columnTag{typ: "timeuuid", cluster: true, clusterPos: 1},
		},
		{
			name:     "generic type with commas",
			tag:      "name=scores,type=map<text, int>,static",
			expected: columnTag{name: "scores", typ: "map<text, int>", static: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTag(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *got)
		})
	}
}

func TestParseTagErrors(t *testing.T) {
	tests := []struct {
		tag    string
		errMsg string
	}{
		{"type=text,indexed", `unknown attribute "indexed"`},
		{"type=", "type requires a value"},
		{"type=int,static=false", "static takes no arguments"},
		{"type=int,primary_key(position=2)", "primary_key takes no arguments"},
		{"type=int,compound_key(order=ASC)", `unknown parameter "order"`},
		{"type=int,compound_key(position=0)", "must be a positive integer"},
		{"type=int,cluster_key(position=x)", "must be a positive integer"},
		{"type=int,cluster_key(order)", "is not key=value"},
		{"type=int,cluster_key(order=ASC", "unclosed parenthesis"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			_, err := parseTag(tt.tag)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSplitTopLevel(t *testing.T) {
	assert.Equal(t, []string{"a", "b(c,d)", "e<f,g>"}, splitTopLevel("a,b(c,d),e<f,g>", ','))
	assert.Equal(t, []string{""}, splitTopLevel("", ','))
}
