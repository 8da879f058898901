package cassandra

import (
	gocql "github.com/apache/cassandra-gocql-driver/v2"
	"github.com/google/uuid"
)

// BindValues converts values the driver cannot marshal directly. Entity
// fields typed uuid.UUID are sent as gocql.UUID; everything else passes
// through unchanged.
func BindValues(values []interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = bindValue(v)
	}
	return out
}

func bindValue(v interface{}) interface{} {
	switch val := v.(type) {
	case uuid.UUID:
		return gocql.UUID(val)
	case *uuid.UUID:
		if val == nil {
			return nil
		}
		return gocql.UUID(*val)
	case uuid.NullUUID:
		if !val.Valid {
			return nil
		}
		return gocql.UUID(val.UUID)
	case []uuid.UUID:
		ids := make([]gocql.UUID, len(val))
		for i, id := range val {
			ids[i] = gocql.UUID(id)
		}
		return ids
	}
	return v
}
