// Package repository holds the MySQL data access layer.  The sentinel
// errors below are the only storage failures services branch on;
// everything else is treated as unexpected.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a looked-up row does not exist, or when
// an insert references a parent row that does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// key, such as a second active booking for the same seat and event.
var ErrDuplicate = errors.New("duplicate")

// ErrConflict is returned when a delete is blocked by rows that still
// reference the target.
var ErrConflict = errors.New("conflict")

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// translate maps driver errors onto the sentinels above.  Unknown
// errors are returned unchanged.
func translate(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlDuplicateEntry:
		return errors.Join(ErrDuplicate, err)
	case mysqlRowIsReferenced:
		return errors.Join(ErrConflict, err)
	case mysqlNoReferencedRow:
		return errors.Join(ErrNotFound, err)
	}
	return err
}
