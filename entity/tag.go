package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/axonops/cqltable/schema"
)

// TagName is the struct tag read by For.
const TagName = "cql"

// columnTag is the parsed form of a `cql:"..."` field tag, e.g.
//
//	`cql:"type=text,primary_key"`
//	`cql:"type=int,compound_key(position=2)"`
//	`cql:"type=timestamp,cluster_key(order=ASC,position=1)"`
//	`cql:"name=mail,type=text,static"`
type columnTag struct {
	name   string
	typ    string
	static bool

	partition    bool
	partitionPos int

	cluster      bool
	clusterOrder string
	clusterPos   int
}

func parseTag(tag string) (*columnTag, error) {
	ct := &columnTag{}
	for _, item := range splitTopLevel(tag, ',') {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		key, args, hasArgs, err := splitCall(item)
		if err != nil {
			return nil, err
		}

		switch key {
		case "name", "type":
			value, ok := assignment(item)
			if !ok || value == "" {
				return nil, fmt.Errorf("%s requires a value, as in %s=...", key, key)
			}
			if key == "name" {
				ct.name = value
			} else {
				ct.typ = value
			}

		case "static":
			if hasArgs || item != key {
				return nil, fmt.Errorf("static takes no arguments")
			}
			ct.static = true

		case "primary_key":
			if hasArgs || item != key {
				return nil, fmt.Errorf("primary_key takes no arguments, use compound_key(position=N)")
			}
			ct.partition = true
			ct.partitionPos = schema.DefaultPosition

		case "compound_key":
			params, err := parseParams(args, "position")
			if err != nil {
				return nil, fmt.Errorf("compound_key: %w", err)
			}
			pos, err := positionParam(params)
			if err != nil {
				return nil, fmt.Errorf("compound_key: %w", err)
			}
			ct.partition = true
			ct.partitionPos = pos

		case "cluster_key":
			params, err := parseParams(args, "order", "position")
			if err != nil {
				return nil, fmt.Errorf("cluster_key: %w", err)
			}
			pos, err := positionParam(params)
			if err != nil {
				return nil, fmt.Errorf("cluster_key: %w", err)
			}
			ct.cluster = true
			ct.clusterOrder = params["order"]
			ct.clusterPos = pos

		default:
			return nil, fmt.Errorf("unknown attribute %q", key)
		}
	}
	return ct, nil
}

// splitCall splits "key(args)" or "key=value" into its key and argument text.
func splitCall(item string) (key, args string, hasArgs bool, err error) {
	if i := strings.IndexAny(item, "(="); i >= 0 && item[i] == '(' {
		if !strings.HasSuffix(item, ")") {
			return "", "", false, fmt.Errorf("unclosed parenthesis in %q", item)
		}
		return strings.TrimSpace(item[:i]), item[i+1 : len(item)-1], true, nil
	}
	if i := strings.IndexByte(item, '='); i >= 0 {
		return strings.TrimSpace(item[:i]), "", false, nil
	}
	return item, "", false, nil
}

func assignment(item string) (string, bool) {
	i := strings.IndexByte(item, '=')
	if i < 0 {
		return "", false
	}
	return strings.TrimSpace(item[i+1:]), true
}

// parseParams reads "k=v,k=v" restricted to the allowed keys.
func parseParams(args string, allowed ...string) (map[string]string, error) {
	params := make(map[string]string)
	for _, p := range splitTopLevel(args, ',') {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		i := strings.IndexByte(p, '=')
		if i < 0 {
			return nil, fmt.Errorf("parameter %q is not key=value", p)
		}
		k, v := strings.TrimSpace(p[:i]), strings.TrimSpace(p[i+1:])
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown parameter %q", k)
		}
		params[k] = v
	}
	return params, nil
}

func positionParam(params map[string]string) (int, error) {
	raw, ok := params["position"]
	if !ok {
		return schema.DefaultPosition, nil
	}
	pos, err := strconv.Atoi(raw)
	if err != nil || pos < 1 {
		return 0, fmt.Errorf("position %q must be a positive integer", raw)
	}
	return pos, nil
}

// splitTopLevel splits s on sep, ignoring separators nested in () or <>.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '<':
			depth++
		case ')', '>':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
