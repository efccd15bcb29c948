// Package repository holds the MySQL data access layer. The sentinel errors
// below let handlers distinguish failure scenarios without inspecting
// driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row does not exist or is no longer valid
// (for example an expired refresh token). Handlers translate it into 401
// or 404 depending on the endpoint.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
