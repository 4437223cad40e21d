package db

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ErrConnectivity marks a failure to reach the store. Callers treat it as
// fatal: it aborts an ingestion run or a query and is never retried.
var ErrConnectivity = errors.New("store unreachable")

// database/sql does not export its closed-pool error.
const errDBClosed = "sql: database is closed"

// IsConnectivity reports whether err means the store could not be reached or
// the connection was lost, as opposed to the store rejecting a statement.
func IsConnectivity(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConnectivity) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if strings.Contains(err.Error(), errDBClosed) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exception; 57P01-57P03 are shutdowns.
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "57P01" || pgErr.Code == "57P02" || pgErr.Code == "57P03"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrNotADB:
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Classify wraps connectivity failures with ErrConnectivity and returns any
// other error unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, ErrConnectivity) || !IsConnectivity(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrConnectivity, err)
}
