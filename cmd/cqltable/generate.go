package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/axonops/cqltable/cql"
	"github.com/axonops/cqltable/schema"
)

// tableReport is what generate prints for one table.
type tableReport struct {
	Name           string      `json:"name"`
	Keyspace       string      `json:"keyspace,omitempty"`
	Fingerprint    string      `json:"fingerprint"`
	Statements     []cql.Named `json:"statements"`
	InsertBindings []string    `json:"insertBindings"`
	UpdateBindings []string    `json:"updateBindings,omitempty"`
	DeleteBindings []string    `json:"deleteBindings"`
	UpdateError    string      `json:"updateError,omitempty"`
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"join": func(s []string) string { return strings.Join(s, ",") },
}).Parse(`-- {{ if .Keyspace }}{{ .Keyspace }}.{{ end }}{{ .Name }} ({{ .Fingerprint }})
{{- range .Statements }}
-- {{ .Name }}
{{ .Query }}
{{- end }}
-- insert binds: {{ join .InsertBindings }}
{{- if .UpdateError }}
-- update: {{ .UpdateError }}
{{- else }}
-- update binds: {{ join .UpdateBindings }}
{{- end }}
-- delete binds: {{ join .DeleteBindings }}

`))

func newReport(t *schema.Table) tableReport {
	tpl := cql.Generate(t)
	_, insertBindings := tpl.Insert()
	_, deleteBindings := tpl.DeleteQuery()
	r := tableReport{
		Name:           t.Name(),
		Keyspace:       t.Keyspace(),
		Fingerprint:    fmt.Sprintf("%016x", t.Fingerprint()),
		Statements:     tpl.Statements(),
		InsertBindings: insertBindings,
		DeleteBindings: deleteBindings,
	}
	if _, bindings, err := tpl.UpdateQuery(); err != nil {
		r.UpdateError = err.Error()
	} else {
		r.UpdateBindings = bindings
	}
	return r
}

func runGenerate(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var paths pathList
	fs.Var(&paths, "schema", "schema file or directory (repeatable)")
	format := fs.String("format", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "text" && *format != "json" {
		return usageError{fmt.Sprintf("unknown format %q", *format)}
	}

	tables, err := loadTables(paths, nil)
	if err != nil {
		return err
	}

	reports := make([]tableReport, 0, len(tables))
	for _, t := range tables {
		reports = append(reports, newReport(t))
	}

	if *format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(reports)
	}
	for _, r := range reports {
		if err := reportTemplate.Execute(stdout, r); err != nil {
			return err
		}
	}
	return nil
}
