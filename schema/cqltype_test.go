package schema

import (
	"reflect"
	"testing"
)

func TestParseCQLType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *CQLType
		wantErr  bool
	}{
		{
			name:     "simple text",
			input:    "text",
			expected: &CQLType{Kind: "text"},
		},
		{
			name:     "upper case primitive",
			input:    "TIMESTAMP",
			expected: &CQLType{Kind: "timestamp"},
		},
		{
			name:  "list of int",
			input: "list<int>",
			expected: &CQLType{
				Kind:     "list",
				Elements: []*CQLType{{Kind: "int"}},
			},
		},
		{
			name:  "map of text to list",
			input: "map<text, list<int>>",
			expected: &CQLType{
				Kind: "map",
				Elements: []*CQLType{
					{Kind: "text"},
					{Kind: "list", Elements: []*CQLType{{Kind: "int"}}},
				},
			},
		},
		{
			name:  "frozen set",
			input: "frozen<set<uuid>>",
			expected: &CQLType{
				Kind:     "set",
				Frozen:   true,
				Elements: []*CQLType{{Kind: "uuid"}},
			},
		},
		{
			name:  "tuple",
			input: "tuple<int, text, boolean>",
			expected: &CQLType{
				Kind:     "tuple",
				Elements: []*CQLType{{Kind: "int"}, {Kind: "text"}, {Kind: "boolean"}},
			},
		},
		{
			name:  "vector",
			input: "vector<float, 3>",
			expected: &CQLType{
				Kind:      "vector",
				Elements:  []*CQLType{{Kind: "float"}},
				Dimension: 3,
			},
		},
		{
			name:     "udt",
			input:    "address",
			expected: &CQLType{Kind: "udt", UDTName: "address"},
		},
		{
			name:     "qualified udt",
			input:    "frozen<shop.address>",
			expected: &CQLType{Kind: "udt", Frozen: true, Keyspace: "shop", UDTName: "address"},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "unclosed list", input: "list<int", wantErr: true},
		{name: "map with one element", input: "map<int>", wantErr: true},
		{name: "trailing garbage", input: "text foo", wantErr: true},
		{name: "vector without dimension", input: "vector<float>", wantErr: true},
		{name: "vector zero dimension", input: "vector<float, 0>", wantErr: true},
		{name: "dangling keyspace", input: "ks.", wantErr: true},
		{name: "punctuation", input: "<int>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCQLType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseCQLType(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCQLType(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseCQLType(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCQLTypeString(t *testing.T) {
	tests := map[string]string{
		"TEXT":                          "text",
		"map<TEXT,list<INT>>":           "map<text, list<int>>",
		"frozen< tuple<int,text> >":     "frozen<tuple<int, text>>",
		"vector<float,16>":              "vector<float, 16>",
		"frozen<ks.address>":            "frozen<ks.address>",
		"set<frozen<map<uuid, text>>>":  "set<frozen<map<uuid, text>>>",
	}
	for in, want := range tests {
		typ, err := ParseCQLType(in)
		if err != nil {
			t.Fatalf("ParseCQLType(%q): %v", in, err)
		}
		if got := typ.String(); got != want {
			t.Errorf("ParseCQLType(%q).String() = %q, want %q", in, got, want)
		}
	}
}
