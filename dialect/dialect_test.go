package dialect

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDriverTableComplete(t *testing.T) {
	if len(AllDrivers) != 9 {
		t.Fatalf("AllDrivers has %d entries, want 9", len(AllDrivers))
	}
	seen := map[string]Driver{}
	for _, d := range AllDrivers {
		name, ok := d.SQLName()
		if !ok || name == "" {
			t.Errorf("%s has no database/sql name", d)
			continue
		}
		if prev, dup := seen[name]; dup {
			t.Errorf("%s and %s share the name %q", prev, d, name)
		}
		seen[name] = d
		if strings.HasPrefix(d.String(), "Driver(") {
			t.Errorf("driver %d has no String case", int(d))
		}
	}
	if _, ok := Driver(99).SQLName(); ok {
		t.Error("unknown driver must not resolve")
	}
}

func TestProbe(t *testing.T) {
	caps := probe([]string{"sqlite3", "postgres", "not-a-candidate"})

	if got, want := caps.SupportedDrivers(), []string{"postgres", "sqlite3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SupportedDrivers() = %v, want %v", got, want)
	}
	if !caps.Supports(SQLite) || caps.Supports(MySql) {
		t.Error("Supports does not match the probed set")
	}

	name, err := caps.Validate(Postgres)
	if err != nil || name != "postgres" {
		t.Errorf("Validate(Postgres) = %q, %v", name, err)
	}
	if _, err := caps.Validate(Oracle); !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("Validate(Oracle) err = %v, want ErrUnsupportedDriver", err)
	}
	if _, err := caps.Validate(Driver(42)); !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("Validate(42) err = %v, want ErrUnsupportedDriver", err)
	}
}

func TestProbeLinkedDrivers(t *testing.T) {
	caps := Probe()
	for _, d := range []Driver{SQLite, Postgres, MySql} {
		if !caps.Supports(d) {
			t.Errorf("%s should be available, linked drivers: %v", d, caps.SupportedDrivers())
		}
	}
}

func TestParseDriver(t *testing.T) {
	cases := map[string]Driver{
		"postgres":  Postgres,
		"QPSQL":     Postgres,
		"MySQL":     MySql,
		"sqlite":    SQLite,
		"sqlite3":   SQLite,
		"QSQLITE2":  SQLite2,
		"mssql":     TDS,
		"firebird":  InterBase,
		" db2 ":     DB2,
		"qodbc":     ODBC,
		"oracle":    Oracle,
		"interbase": InterBase,
	}
	for in, want := range cases {
		got, err := ParseDriver(in)
		if err != nil || got != want {
			t.Errorf("ParseDriver(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseDriver("mongodb"); !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("expected ErrUnsupportedDriver, got %v", err)
	}
}

func TestTableKind(t *testing.T) {
	for _, k := range []TableKind{Tables, SystemTables, Views, AllTables} {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	for _, k := range []TableKind{-1, 4, 100} {
		if k.Valid() {
			t.Errorf("%d should be invalid", int(k))
		}
	}
	if TableKind(7).String() != "TableKind(7)" {
		t.Errorf("String() = %q", TableKind(7).String())
	}
}

func TestSQLiteDSN(t *testing.T) {
	d := For("sqlite3")
	if got := d.DSN(ConnParams{}); got != ":memory:" {
		t.Errorf("empty name DSN = %q", got)
	}
	if got := d.DSN(ConnParams{DatabaseName: "/tmp/a.db"}); got != "/tmp/a.db" {
		t.Errorf("file DSN = %q", got)
	}
	got := d.DSN(ConnParams{DatabaseName: "/tmp/a.db", Params: map[string]string{"mode": "ro", "_fk": "1"}})
	if got != "file:/tmp/a.db?_fk=1&mode=ro" {
		t.Errorf("params DSN = %q", got)
	}
}

func TestPostgresDSN(t *testing.T) {
	d := For("postgres")
	got := d.DSN(ConnParams{
		Host:         "db.local",
		Port:         5432,
		DatabaseName: "app",
		User:         "ann",
		Password:     "it's secret",
		Params:       map[string]string{"application_name": "namedsql"},
	})
	want := `host=db.local port=5432 dbname=app user=ann password='it\'s secret' application_name=namedsql sslmode=disable`
	if got != want {
		t.Errorf("DSN =\n %s\nwant\n %s", got, want)
	}

	got = d.DSN(ConnParams{DatabaseName: "app", Params: map[string]string{"sslmode": "require"}})
	if got != "dbname=app sslmode=require" {
		t.Errorf("DSN with sslmode = %q", got)
	}
}

func TestMySQLDSN(t *testing.T) {
	d := For("mysql")
	got := d.DSN(ConnParams{DatabaseName: "app", User: "root", Password: "pw"})
	if !strings.HasPrefix(got, "root:pw@tcp(127.0.0.1:3306)/app") {
		t.Errorf("DSN = %q", got)
	}
	got = d.DSN(ConnParams{Host: "db", Port: 3307, DatabaseName: "app", User: "u"})
	if !strings.HasPrefix(got, "u@tcp(db:3307)/app") {
		t.Errorf("DSN = %q", got)
	}
}

func TestSQLServerDSN(t *testing.T) {
	d := For("sqlserver")
	got := d.DSN(ConnParams{Host: "mssql", Port: 1433, DatabaseName: "app", User: "sa", Password: "pw"})
	if got != "sqlserver://sa:pw@mssql:1433?database=app" {
		t.Errorf("DSN = %q", got)
	}
}

func TestGenericDialect(t *testing.T) {
	d := For("odbc")
	if d.Name() != "odbc" {
		t.Errorf("Name() = %q", d.Name())
	}
	if got := d.DSN(ConnParams{DatabaseName: "DSN=app"}); got != "DSN=app" {
		t.Errorf("local DSN = %q", got)
	}
	got := d.DSN(ConnParams{Host: "h", Port: 1, DatabaseName: "db", User: "u", Password: "p"})
	if got != "odbc://u:p@h:1/db" {
		t.Errorf("URL DSN = %q", got)
	}
}

func TestTablesSQL(t *testing.T) {
	for _, name := range []string{"sqlite3", "postgres", "mysql", "sqlserver", "firebirdsql"} {
		d := For(name)
		seen := map[string]bool{}
		for _, k := range []TableKind{Tables, SystemTables, Views} {
			query, _ := d.TablesSQL(k)
			if !strings.HasPrefix(query, "SELECT") {
				t.Errorf("%s %s: %q", name, k, query)
			}
			if seen[query] {
				t.Errorf("%s: %s reuses another kind's query", name, k)
			}
			seen[query] = true
		}
	}
}
