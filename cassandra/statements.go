package cassandra

import (
	"errors"
	"fmt"

	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/axonops/cqltable/cql"
	"github.com/axonops/cqltable/internal/logger"
)

// ExecuteStatement executes a generated statement with its bound values
func (s *Session) ExecuteStatement(st cql.Statement) error {
	logger.DebugfToFile("ExecuteStatement", "%s values=%d", st, len(st.Values))
	if err := s.Query(st.Query, st.Values...).Exec(); err != nil {
		return fmt.Errorf("%s: %w", st, err)
	}
	return nil
}

// ExecuteDDL executes a schema statement without bound values
func (s *Session) ExecuteDDL(stmt string) error {
	return s.ExecuteStatement(cql.Statement{Query: stmt})
}

// ExecuteBatch executes statements in one logged batch. The batch runs at the
// cluster default consistency.
func (s *Session) ExecuteBatch(statements []cql.Statement) error {
	if len(statements) == 0 {
		return errors.New("no statements to execute")
	}
	batch := s.Batch(gocql.LoggedBatch)
	for _, st := range statements {
		batch.Query(st.Query, BindValues(st.Values)...)
	}
	logger.DebugfToFile("ExecuteBatch", "executing %d statement(s)", len(statements))
	if err := batch.Exec(); err != nil {
		return fmt.Errorf("batch of %d statements: %w", len(statements), err)
	}
	return nil
}
