package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// CQLType is a parsed column type declaration.
type CQLType struct {
	Kind      string // "text", "int", "list", "map", "vector", "udt", ...
	Frozen    bool
	Elements  []*CQLType // collection, tuple and vector element types
	Dimension int        // vector only
	UDTName   string
	Keyspace  string // optional qualifier of a UDT
}

// ParseCQLType parses a column type declaration such as "text",
// "frozen<map<text, list<int>>>", "vector<float, 3>" or "ks.address".
// Unknown identifiers are taken to be user-defined types.
func ParseCQLType(decl string) (*CQLType, error) {
	decl = strings.TrimSpace(decl)
	if decl == "" {
		return nil, fmt.Errorf("empty type")
	}

	p := &typeScanner{input: decl}
	typ, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", decl, err)
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("type %q: unexpected %q at position %d", decl, p.input[p.pos:], p.pos)
	}
	return typ, nil
}

type typeScanner struct {
	input string
	pos   int
}

func (p *typeScanner) parseType() (*CQLType, error) {
	if p.keyword("frozen") {
		if !p.accept('<') {
			return nil, fmt.Errorf("expected '<' after frozen at position %d", p.pos)
		}
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if !p.accept('>') {
			return nil, fmt.Errorf("expected '>' to close frozen at position %d", p.pos)
		}
		inner.Frozen = true
		return inner, nil
	}

	ident := p.identifier()
	if ident == "" {
		return nil, fmt.Errorf("expected type name at position %d", p.pos)
	}
	typ := &CQLType{Kind: strings.ToLower(ident)}

	switch typ.Kind {
	case "list", "set":
		elems, err := p.parseElements(typ.Kind, 1)
		if err != nil {
			return nil, err
		}
		typ.Elements = elems

	case "map":
		elems, err := p.parseElements(typ.Kind, 2)
		if err != nil {
			return nil, err
		}
		typ.Elements = elems

	case "tuple":
		elems, err := p.parseElements(typ.Kind, -1)
		if err != nil {
			return nil, err
		}
		typ.Elements = elems

	case "vector":
		if !p.accept('<') {
			return nil, fmt.Errorf("expected '<' after vector at position %d", p.pos)
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, fmt.Errorf("vector element: %w", err)
		}
		if !p.accept(',') {
			return nil, fmt.Errorf("expected ',' before vector dimension at position %d", p.pos)
		}
		dim, err := strconv.Atoi(p.identifier())
		if err != nil || dim <= 0 {
			return nil, fmt.Errorf("vector dimension must be a positive integer at position %d", p.pos)
		}
		if !p.accept('>') {
			return nil, fmt.Errorf("expected '>' to close vector at position %d", p.pos)
		}
		typ.Elements = []*CQLType{elem}
		typ.Dimension = dim

	default:
		if p.accept('.') {
			name := p.identifier()
			if name == "" {
				return nil, fmt.Errorf("expected type name after keyspace %q at position %d", ident, p.pos)
			}
			typ.Kind = "udt"
			typ.Keyspace = ident
			typ.UDTName = name
		} else if !primitiveTypes[typ.Kind] {
			typ.Kind = "udt"
			typ.UDTName = ident
		}
	}
	return typ, nil
}

// parseElements reads "<t1, t2, ...>". want < 0 accepts any non-zero count.
func (p *typeScanner) parseElements(kind string, want int) ([]*CQLType, error) {
	if !p.accept('<') {
		return nil, fmt.Errorf("expected '<' after %s at position %d", kind, p.pos)
	}
	var elems []*CQLType
	for {
		elem, err := p.parseType()
		if err != nil {
			return nil, fmt.Errorf("%s element: %w", kind, err)
		}
		elems = append(elems, elem)
		if p.accept('>') {
			break
		}
		if !p.accept(',') {
			return nil, fmt.Errorf("expected ',' or '>' in %s at position %d", kind, p.pos)
		}
	}
	if want > 0 && len(elems) != want {
		return nil, fmt.Errorf("%s takes %d element type(s), got %d", kind, want, len(elems))
	}
	return elems, nil
}

func (p *typeScanner) identifier() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && isIdentByte(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *typeScanner) accept(ch byte) bool {
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == ch {
		p.pos++
		return true
	}
	return false
}

func (p *typeScanner) keyword(kw string) bool {
	p.skipSpace()
	end := p.pos + len(kw)
	if end > len(p.input) || !strings.EqualFold(p.input[p.pos:end], kw) {
		return false
	}
	if end < len(p.input) && isIdentByte(p.input[end]) {
		return false
	}
	p.pos = end
	return true
}

func (p *typeScanner) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func isIdentByte(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_'
}

var primitiveTypes = map[string]bool{
	"ascii": true, "bigint": true, "blob": true, "boolean": true, "counter": true,
	"date": true, "decimal": true, "double": true, "duration": true, "float": true,
	"inet": true, "int": true, "smallint": true, "text": true, "time": true,
	"timestamp": true, "timeuuid": true, "tinyint": true, "uuid": true,
	"varchar": true, "varint": true,
}

// String renders the type in canonical lower-case form.
func (t *CQLType) String() string {
	var sb strings.Builder
	if t.Frozen {
		sb.WriteString("frozen<")
	}
	switch t.Kind {
	case "list", "set", "map", "tuple":
		sb.WriteString(t.Kind)
		sb.WriteByte('<')
		for i, e := range t.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte('>')
	case "vector":
		sb.WriteString("vector<")
		if len(t.Elements) > 0 {
			sb.WriteString(t.Elements[0].String())
		}
		sb.WriteString(", ")
		sb.WriteString(strconv.Itoa(t.Dimension))
		sb.WriteByte('>')
	case "udt":
		if t.Keyspace != "" {
			sb.WriteString(t.Keyspace)
			sb.WriteByte('.')
		}
		sb.WriteString(t.UDTName)
	default:
		sb.WriteString(t.Kind)
	}
	if t.Frozen {
		sb.WriteByte('>')
	}
	return sb.String()
}

// IsCollection reports whether the type is a list, set or map.
func (t *CQLType) IsCollection() bool {
	switch t.Kind {
	case "list", "set", "map":
		return true
	}
	return false
}
