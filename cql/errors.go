package cql

import (
	"errors"
	"fmt"
)

// ErrNoUpdatableColumns is matched by errors.Is when a table has no column
// outside its primary key.
var ErrNoUpdatableColumns = errors.New("table has no updatable columns")

// NoUpdatableColumnsError reports that an update statement cannot be built
// because every column of the table is a key column.
type NoUpdatableColumnsError struct {
	Table string
}

func (e *NoUpdatableColumnsError) Error() string {
	return fmt.Sprintf("table %s has no updatable columns: every column is part of the primary key", e.Table)
}

func (e *NoUpdatableColumnsError) Is(target error) bool {
	return target == ErrNoUpdatableColumns
}
