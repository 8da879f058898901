// Command cqltable prints and applies the CQL generated from schema
// description files.
//
//	cqltable [-debug] generate -schema schemas/ [-format text|json]
//	cqltable [-debug] apply    -schema schemas/ [-config cqltable.json] [-dry-run]
//	cqltable [-debug] drop     -schema schemas/ [-config cqltable.json] [-dry-run] -yes
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/axonops/cqltable/cassandra"
	"github.com/axonops/cqltable/config"
	"github.com/axonops/cqltable/internal/logger"
	"github.com/axonops/cqltable/schema"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// schemaExecutor is the part of a database session the CLI needs.
type schemaExecutor interface {
	CreateTable(t *schema.Table) error
	DropTable(t *schema.Table) error
	Close()
}

// connect opens a session; replaced in tests.
var connect = func(cfg *config.Config) (schemaExecutor, error) {
	return cassandra.NewSession(cfg)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: cqltable [-debug] <generate|apply|drop> [flags]")
	fmt.Fprintln(w, "run 'cqltable <command> -h' for command flags")
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("cqltable", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { usage(stderr) }
	debug := global.Bool("debug", false, "append debug output to the debug log")
	if err := global.Parse(args); err != nil {
		return exitUsage
	}
	if *debug {
		logger.SetDebugEnabled(true)
	}

	rest := global.Args()
	if len(rest) == 0 {
		usage(stderr)
		return exitUsage
	}

	var err error
	switch rest[0] {
	case "generate":
		err = runGenerate(rest[1:], stdout, stderr)
	case "apply":
		err = runApply(rest[1:], stdout, stderr, false)
	case "drop":
		err = runApply(rest[1:], stdout, stderr, true)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		usage(stderr)
		return exitUsage
	}

	var uerr usageError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.As(err, &uerr):
		fmt.Fprintln(stderr, err)
		return exitUsage
	default:
		logger.DebugfToFile("cqltable", "%s failed: %v", rest[0], err)
		fmt.Fprintf(stderr, "cqltable %s: %v\n", rest[0], err)
		return exitError
	}
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// pathList is a repeatable, comma-separated flag value.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*p = append(*p, part)
		}
	}
	return nil
}

// loadTables loads the schema files named on the command line, falling back
// to the configured schema paths.
func loadTables(paths pathList, cfg *config.Config) ([]*schema.Table, error) {
	if len(paths) == 0 && cfg != nil {
		paths = cfg.SchemaPaths
	}
	if len(paths) == 0 {
		return nil, usageError{"no schema given: use -schema or set schemaPaths in the configuration"}
	}
	return schema.LoadPaths(paths...)
}
