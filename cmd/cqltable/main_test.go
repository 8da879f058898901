package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonops/cqltable/config"
	"github.com/axonops/cqltable/internal/logger"
	"github.com/axonops/cqltable/schema"
)

const accountSchema = `
tables:
  - entity: UserAccount
    keyspace: test
    columns:
      - {name: username, type: text, primary_key: true}
      - {name: created, type: timestamp, cluster_key: {order: DESC, position: 1}}
      - {name: email, type: text}
`

const edgeSchema = `
tables:
  - entity: Edge
    columns:
      - {name: src, type: text, primary_key: true}
      - {name: dst, type: text, cluster_key: {order: ASC}}
`

type fakeExecutor struct {
	created []string
	dropped []string
	failOn  string
	closed  bool
}

func (f *fakeExecutor) CreateTable(t *schema.Table) error {
	if t.Name() == f.failOn {
		return errors.New("boom")
	}
	f.created = append(f.created, t.QualifiedName())
	return nil
}

func (f *fakeExecutor) DropTable(t *schema.Table) error {
	f.dropped = append(f.dropped, t.QualifiedName())
	return nil
}

func (f *fakeExecutor) Close() { f.closed = true }

func writeSchema(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// isolate keeps the user's configuration and environment out of a test.
func isolate(t *testing.T) *fakeExecutor {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(logger.LogPathEnv, filepath.Join(t.TempDir(), "debug.log"))
	for _, name := range []string{"CQLTABLE_SCHEMA_PATH", "CQLTABLE_DEBUG", "CQLTABLE_CONSISTENCY",
		"CASSANDRA_HOST", "CQLTABLE_HOST"} {
		t.Setenv(name, "")
	}

	fake := &fakeExecutor{}
	orig := connect
	connect = func(*config.Config) (schemaExecutor, error) { return fake, nil }
	t.Cleanup(func() {
		connect = orig
		logger.SetDebugEnabled(false)
	})
	return fake
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, exitUsage},
		{"unknown command", []string{"migrate"}, exitUsage},
		{"bad global flag", []string{"-verbose", "generate"}, exitUsage},
		{"no schema", []string{"generate"}, exitUsage},
		{"bad format", []string{"generate", "-format", "xml", "-schema", "x.yaml"}, exitUsage},
		{"drop without confirmation", []string{"drop", "-schema", "x.yaml"}, exitUsage},
		{"help", []string{"generate", "-h"}, exitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.want, run(tt.args, &stdout, &stderr))
		})
	}
}

func TestGenerateText(t *testing.T) {
	isolate(t)
	path := writeSchema(t, t.TempDir(), "account.yaml", accountSchema)

	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{"generate", "-schema", path}, &stdout, &stderr), stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "-- test.user_account (")
	assert.Contains(t, out, "-- create_table\nCREATE TABLE IF NOT EXISTS test.user_account (username TEXT,created TIMESTAMP,email TEXT, "+
		"PRIMARY KEY ((username), created)) WITH CLUSTERING ORDER BY (created DESC);\n")
	assert.Contains(t, out, "-- select_by_primary_and_cluster_keys\nSELECT * FROM test.user_account WHERE  username=?  AND  created=? \n")
	assert.Contains(t, out, "-- insert binds: username,created,email\n")
	assert.Contains(t, out, "-- update binds: email,username,created\n")
	assert.Contains(t, out, "-- delete binds: username,created\n")
}

func TestGenerateJSON(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeSchema(t, dir, "a_account.yaml", accountSchema)
	writeSchema(t, dir, "b_edge.yml", edgeSchema)

	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{"generate", "-format", "json", "-schema", dir}, &stdout, &stderr), stderr.String())

	var reports []tableReport
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &reports))
	require.Len(t, reports, 2)

	assert.Equal(t, "user_account", reports[0].Name)
	assert.Equal(t, "test", reports[0].Keyspace)
	assert.Len(t, reports[0].Fingerprint, 16)
	assert.Equal(t, []string{"email", "username", "created"}, reports[0].UpdateBindings)
	assert.Empty(t, reports[0].UpdateError)

	assert.Equal(t, "edge", reports[1].Name)
	assert.Empty(t, reports[1].Keyspace)
	assert.NotEmpty(t, reports[1].UpdateError)
	assert.Nil(t, reports[1].UpdateBindings)
	last := reports[1].Statements[len(reports[1].Statements)-1]
	assert.Equal(t, "insert", last.Name)
	assert.Equal(t, "INSERT INTO .edge (src,dst) VALUES (?,?)", last.Query)
}

func TestGenerateInvalidSchema(t *testing.T) {
	isolate(t)
	path := writeSchema(t, t.TempDir(), "broken.yaml", `
tables:
  - entity: Broken
    columns:
      - {name: id, type: int}
`)
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitError, run([]string{"generate", "-schema", path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "cqltable generate:")
}

func TestApply(t *testing.T) {
	fake := isolate(t)
	path := writeSchema(t, t.TempDir(), "account.yaml", accountSchema)

	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{"-debug", "apply", "-schema", path}, &stdout, &stderr), stderr.String())
	assert.Equal(t, []string{"test.user_account"}, fake.created)
	assert.True(t, fake.closed)
	assert.Equal(t, "created test.user_account\n", stdout.String())
}

func TestApplyDryRunDoesNotConnect(t *testing.T) {
	isolate(t)
	connect = func(*config.Config) (schemaExecutor, error) {
		t.Fatal("dry run must not connect")
		return nil, nil
	}
	path := writeSchema(t, t.TempDir(), "account.yaml", accountSchema)

	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{"drop", "-dry-run", "-schema", path}, &stdout, &stderr), stderr.String())
	assert.Equal(t, "DROP TABLE IF EXISTS test.user_account\n", stdout.String())
}

func TestApplyFailures(t *testing.T) {
	t.Run("missing keyspace", func(t *testing.T) {
		fake := isolate(t)
		path := writeSchema(t, t.TempDir(), "edge.yaml", edgeSchema)
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitError, run([]string{"apply", "-schema", path}, &stdout, &stderr))
		assert.Contains(t, stderr.String(), "has no keyspace")
		assert.Empty(t, fake.created)
	})

	t.Run("executor error", func(t *testing.T) {
		fake := isolate(t)
		fake.failOn = "user_account"
		path := writeSchema(t, t.TempDir(), "account.yaml", accountSchema)
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitError, run([]string{"apply", "-schema", path}, &stdout, &stderr))
		assert.Contains(t, stderr.String(), "test.user_account: boom")
		assert.True(t, fake.closed)
	})

	t.Run("connect error", func(t *testing.T) {
		isolate(t)
		connect = func(*config.Config) (schemaExecutor, error) { return nil, errors.New("no hosts") }
		path := writeSchema(t, t.TempDir(), "account.yaml", accountSchema)
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitError, run([]string{"apply", "-schema", path}, &stdout, &stderr))
		assert.Contains(t, stderr.String(), "no hosts")
	})
}

func TestDropUsesConfiguredSchemaPaths(t *testing.T) {
	fake := isolate(t)
	dir := t.TempDir()
	writeSchema(t, dir, "account.yaml", accountSchema)
	cfgPath := writeSchema(t, dir, "cqltable.json", `{"schemaPaths": ["`+filepath.Join(dir, "account.yaml")+`"]}`)

	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{"drop", "-yes", "-config", cfgPath}, &stdout, &stderr), stderr.String())
	assert.Equal(t, []string{"test.user_account"}, fake.dropped)
	assert.Equal(t, "dropped test.user_account\n", stdout.String())
}

func TestApplyRunsExecutableOptionsClause(t *testing.T) {
	isolate(t)
	path := writeSchema(t, t.TempDir(), "session.yaml", `
tables:
  - entity: Session
    keyspace: ks
    options: "comment='x' | gc_grace_seconds = 0"
    columns:
      - {name: id, type: text, primary_key: true}
`)

	var stdout, stderr bytes.Buffer
	require.Equal(t, exitOK, run([]string{"apply", "-dry-run", "-schema", path}, &stdout, &stderr), stderr.String())
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS ks.session (id TEXT, PRIMARY KEY (id)) WITH comment='x' AND gc_grace_seconds = 0;\n",
		stdout.String())

	stdout.Reset()
	require.Equal(t, exitOK, run([]string{"generate", "-schema", path}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "PRIMARY KEY (id)) AND comment='x' AND gc_grace_seconds = 0;\n")
}
