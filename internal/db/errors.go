package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MySQL error number for a duplicate key and the Postgres SQLSTATE for a
// unique violation.
const (
	mysqlDuplicateEntry   = 1062
	postgresUniqueViolate = "23505"
)

// IsUniqueViolation reports whether err is a unique constraint violation
// whose constraint or message names column.
func IsUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}

	var (
		sqliteErr *sqlite.Error
		mysqlErr  *mysql.MySQLError
		pgErr     *pgconn.PgError
	)
	switch {
	case errors.As(err, &sqliteErr):
		// Primary code CONSTRAINT, with or without extended result codes.
		if sqliteErr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT || !strings.Contains(sqliteErr.Error(), "UNIQUE") {
			return false
		}
	case errors.As(err, &mysqlErr):
		if mysqlErr.Number != mysqlDuplicateEntry {
			return false
		}
	case errors.As(err, &pgErr):
		if pgErr.Code != postgresUniqueViolate {
			return false
		}
		return strings.Contains(pgErr.ConstraintName, column)
	default:
		return false
	}
	return strings.Contains(err.Error(), column)
}
