package helpers

import "database/sql"

// GetNullInt64 converts an int64 pointer to sql.NullInt64.
// If the pointer is nil, returns an empty NullInt64.
func GetNullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}
