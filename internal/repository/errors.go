// Package repository holds the MySQL-backed stores.  The sentinel values
// below let the service layer tell a missing row apart from a failed query
// without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist, or when a
// delete affected no rows.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user registers with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when an insert collides with a unique key other
// than the user email (e.g. a duplicate category name).
var ErrConflict = errors.New("conflict")

// ErrInvalidReference is returned when a foreign key points at a missing
// row, e.g. an offer created with an unknown category id.
var ErrInvalidReference = errors.New("invalid reference")

// MySQL server error numbers we translate.
const (
	errDupEntry        = 1062
	errNoReferencedRow = 1452
)

func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}
