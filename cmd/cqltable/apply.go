package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/axonops/cqltable/cql"
	"github.com/axonops/cqltable/config"
	"github.com/axonops/cqltable/internal/logger"
)

// runApply creates (or with drop set, drops) every loaded table.
func runApply(args []string, stdout, stderr io.Writer, drop bool) error {
	name := "apply"
	if drop {
		name = "drop"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var paths pathList
	fs.Var(&paths, "schema", "schema file or directory (repeatable)")
	configPath := fs.String("config", "", "JSON configuration file")
	dryRun := fs.Bool("dry-run", false, "print the statements without connecting")
	var yes *bool
	if drop {
		yes = fs.Bool("yes", false, "confirm dropping the tables")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if drop && !*dryRun && !*yes {
		return usageError{"drop needs -yes (or -dry-run)"}
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if cfg.Debug {
		logger.SetDebugEnabled(true)
	}

	tables, err := loadTables(paths, cfg)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if t.Keyspace() == "" {
			return fmt.Errorf("table %s has no keyspace", t.Name())
		}
	}

	if *dryRun {
		for _, t := range tables {
			stmt := cql.CreateTable(t, cql.WithOptionsClause())
			if drop {
				stmt = cql.DropTable(t)
			}
			fmt.Fprintln(stdout, stmt)
		}
		return nil
	}

	session, err := connect(cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	for _, t := range tables {
		if drop {
			err = session.DropTable(t)
		} else {
			err = session.CreateTable(t)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", t.QualifiedName(), err)
		}
		logger.DebugfToFile("cqltable", "%s %s", name, t.QualifiedName())
		fmt.Fprintf(stdout, "%s %s\n", pastTense(drop), t.QualifiedName())
	}
	return nil
}

func pastTense(drop bool) string {
	if drop {
		return "dropped"
	}
	return "created"
}
