package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON wraps a value stored as a JSON document in a jsonb/text column.
// It implements sql.Scanner and driver.Valuer so sqlx can read and write it
// like any other field.
type JSON[T any] struct {
	Val T
}

// Scan implements sql.Scanner
func (j *JSON[T]) Scan(src interface{}) error {
	if j == nil {
		return fmt.Errorf("dbtypes: Scan on nil *JSON")
	}
	var zero T
	switch v := src.(type) {
	case nil:
		j.Val = zero
		return nil
	case []byte:
		return json.Unmarshal(v, &j.Val)
	case string:
		return json.Unmarshal([]byte(v), &j.Val)
	default:
		return fmt.Errorf("dbtypes: cannot scan type %T into JSON", src)
	}
}

// Value implements driver.Valuer
func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Val)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
