package store

import (
	"database/sql"
	"errors"
)

// IsErrNotFound reports whether err is a store-level missing-row error,
// so callers need not depend on database/sql directly.
func IsErrNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
