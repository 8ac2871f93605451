// package repositories provides persistence layer implementations for the watchlist service.
package repositories

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Digest returns the lowercase hex SHA-256 digest of password.
//
// Stored digests are compared against this value, so it must stay deterministic and unsalted
// for existing databases to keep authenticating.
func Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// isDuplicate reports whether err is a primary-key or unique constraint violation.
func isDuplicate(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
