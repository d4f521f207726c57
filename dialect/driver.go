package dialect

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedDriver is returned when a driver is unknown or not linked
// into the running binary.
var ErrUnsupportedDriver = errors.New("unsupported driver")

// Driver identifies a database backend independently of the Go package
// that implements it.
type Driver int

const (
	Postgres Driver = iota
	MySql
	Oracle
	ODBC
	DB2
	TDS
	SQLite
	SQLite2
	InterBase
)

// AllDrivers lists every Driver variant in declaration order.
var AllDrivers = []Driver{Postgres, MySql, Oracle, ODBC, DB2, TDS, SQLite, SQLite2, InterBase}

// SQLName returns the database/sql driver name a Driver is registered under
// when its implementation is linked. The switch must stay exhaustive over
// AllDrivers; TestDriverTableComplete enforces it.
func (d Driver) SQLName() (string, bool) {
	switch d {
	case Postgres:
		return "postgres", true
	case MySql:
		return "mysql", true
	case Oracle:
		return "oracle", true
	case ODBC:
		return "odbc", true
	case DB2:
		return "go_ibm_db", true
	case TDS:
		return "sqlserver", true
	case SQLite:
		return "sqlite3", true
	case SQLite2:
		return "sqlite2", true
	case InterBase:
		return "firebirdsql", true
	}
	return "", false
}

func (d Driver) String() string {
	switch d {
	case Postgres:
		return "Postgres"
	case MySql:
		return "MySql"
	case Oracle:
		return "Oracle"
	case ODBC:
		return "ODBC"
	case DB2:
		return "DB2"
	case TDS:
		return "TDS"
	case SQLite:
		return "SQLite"
	case SQLite2:
		return "SQLite2"
	case InterBase:
		return "InterBase"
	}
	return fmt.Sprintf("Driver(%d)", int(d))
}

// Networked reports whether the backend is reached over host and port
// rather than a local file.
func (d Driver) Networked() bool {
	switch d {
	case SQLite, SQLite2:
		return false
	}
	return true
}

// ParseDriver maps a case-insensitive name such as "postgres", "QPSQL",
// "mysql" or "sqlite" to a Driver.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pq", "qpsql":
		return Postgres, nil
	case "mysql", "mariadb", "qmysql":
		return MySql, nil
	case "oracle", "oci", "qoci":
		return Oracle, nil
	case "odbc", "qodbc":
		return ODBC, nil
	case "db2", "qdb2":
		return DB2, nil
	case "tds", "sqlserver", "mssql", "qtds":
		return TDS, nil
	case "sqlite", "sqlite3", "qsqlite":
		return SQLite, nil
	case "sqlite2", "qsqlite2":
		return SQLite2, nil
	case "interbase", "ibase", "firebird", "qibase":
		return InterBase, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedDriver, s)
}

// Capabilities is the set of drivers that are both known and loadable in
// this process. It is computed once and never re-probed.
type Capabilities struct {
	available map[Driver]string
}

// Probe intersects the compiled-in candidate table with the drivers
// registered in database/sql.
func Probe() *Capabilities {
	return probe(sql.Drivers())
}

func probe(registered []string) *Capabilities {
	loaded := make(map[string]bool, len(registered))
	for _, name := range registered {
		loaded[name] = true
	}

	c := &Capabilities{available: make(map[Driver]string)}
	for _, d := range AllDrivers {
		name, ok := d.SQLName()
		if ok && loaded[name] {
			c.available[d] = name
		}
	}
	return c
}

// SupportedDrivers returns the sorted database/sql names of usable drivers.
func (c *Capabilities) SupportedDrivers() []string {
	names := make([]string, 0, len(c.available))
	for _, name := range c.available {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Supports reports whether d can be opened.
func (c *Capabilities) Supports(d Driver) bool {
	_, ok := c.available[d]
	return ok
}

// Validate resolves d to its database/sql driver name.
func (c *Capabilities) Validate(d Driver) (string, error) {
	name, ok := c.available[d]
	if !ok {
		return "", fmt.Errorf("%w: %s is not available in this build", ErrUnsupportedDriver, d)
	}
	return name, nil
}
