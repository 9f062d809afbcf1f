package sqlstore

import (
	"database/sql"
	"errors"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type dialect struct {
	name       string
	driverName string

	createUsers string
	// returningID is set for drivers without LastInsertId support.
	returningID bool

	placeholder       func(n int) string
	isUniqueViolation func(err error) bool

	prepare   func(source string) (string, error)
	configure func(db *sql.DB) error
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name:       DriverSQLite,
		driverName: "sqlite",
		createUsers: `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	first_name TEXT,
	last_name TEXT,
	CONSTRAINT unique_name UNIQUE (first_name, last_name)
);
`,
		placeholder:       questionMark,
		isUniqueViolation: sqliteUniqueViolation,
		prepare:           prepareSQLite,
		configure:         configureSQLite,
	},
	DriverMySQL: {
		name:       DriverMySQL,
		driverName: "mysql",
		createUsers: `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	first_name VARCHAR(255),
	last_name VARCHAR(255),
	CONSTRAINT unique_name UNIQUE (first_name, last_name)
)`,
		placeholder:       questionMark,
		isUniqueViolation: mysqlUniqueViolation,
		prepare:           prepareMySQL,
	},
	DriverPostgres: {
		name:       DriverPostgres,
		driverName: "postgres",
		createUsers: `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	first_name TEXT,
	last_name TEXT,
	CONSTRAINT unique_name UNIQUE (first_name, last_name)
)`,
		returningID:       true,
		placeholder:       dollarN,
		isUniqueViolation: postgresUniqueViolation,
		prepare:           preparePostgres,
	},
}

func questionMark(int) string { return "?" }

func dollarN(n int) string { return "$" + strconv.Itoa(n) }

func sqliteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

const mysqlDuplicateEntry = 1062

func mysqlUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

const postgresUniqueViolationCode = "23505"

func postgresUniqueViolation(err error) bool {
	var pe *pq.Error
	return errors.As(err, &pe) && pe.Code == postgresUniqueViolationCode
}
