package cassandra

import (
	"errors"
	"fmt"

	"github.com/axonops/cqltable/cql"
	"github.com/axonops/cqltable/entity"
)

// ErrNotFound is returned by Find when no row matches.
var ErrNotFound = errors.New("not found")

// Find loads the first row of the partition identified by keys, given in
// partition key position order.
func Find[T any](s *Session, m *entity.Mapper[T], keys ...interface{}) (*T, error) {
	if want := len(m.Table().PartitionKeys()); len(keys) != want {
		return nil, fmt.Errorf("%s: %d partition key value(s) given, %d expected",
			m.Table().QualifiedName(), len(keys), want)
	}

	row := make(map[string]interface{})
	iter := s.Query(m.SelectByPrimaryKeys(cql.All), keys...).Iter()
	found := iter.MapScan(row)
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("find in %s: %w", m.Table().QualifiedName(), err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return m.FromRow(row)
}

// FindAll loads every row of the partition identified by keys.
func FindAll[T any](s *Session, m *entity.Mapper[T], keys ...interface{}) ([]*T, error) {
	iter := s.Query(m.SelectByPrimaryKeys(cql.All), keys...).Iter()

	var out []*T
	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}
		v, err := m.FromRow(row)
		if err != nil {
			_ = iter.Close()
			return nil, err
		}
		out = append(out, v)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("find in %s: %w", m.Table().QualifiedName(), err)
	}
	return out, nil
}

// Count returns the number of rows in the partition identified by keys.
func Count[T any](s *Session, m *entity.Mapper[T], keys ...interface{}) (int64, error) {
	var n int64
	if err := s.Query(m.SelectByPrimaryKeys(cql.Count), keys...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count in %s: %w", m.Table().QualifiedName(), err)
	}
	return n, nil
}

// Store inserts v.
func Store[T any](s *Session, m *entity.Mapper[T], v *T) error {
	return s.ExecuteStatement(m.StoreQuery(v))
}

// Update rewrites every non-key column of v.
func Update[T any](s *Session, m *entity.Mapper[T], v *T) error {
	st, err := m.UpdateQuery(v)
	if err != nil {
		return err
	}
	return s.ExecuteStatement(st)
}

// Delete removes the row identified by v's keys.
func Delete[T any](s *Session, m *entity.Mapper[T], v *T) error {
	return s.ExecuteStatement(m.DeleteQuery(v))
}
