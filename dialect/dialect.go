package dialect

import (
	"fmt"
	"sync"
)

// TableKind selects which catalog objects ListTables returns.
type TableKind int

const (
	Tables TableKind = iota
	SystemTables
	Views
	AllTables
)

// Valid reports whether k is one of the declared kinds.
func (k TableKind) Valid() bool {
	return k >= Tables && k <= AllTables
}

func (k TableKind) String() string {
	switch k {
	case Tables:
		return "tables"
	case SystemTables:
		return "system tables"
	case Views:
		return "views"
	case AllTables:
		return "all tables"
	}
	return fmt.Sprintf("TableKind(%d)", int(k))
}

// ConnParams carries the connection settings a dialect turns into a DSN.
type ConnParams struct {
	Host         string
	DatabaseName string
	User         string
	Password     string
	Port         int
	Params       map[string]string
}

// Dialect represents the database-specific parts of opening a session and
// reading its catalog. Each database/sql driver name that the registry can
// open maps to one Dialect.
type Dialect interface {
	// Name returns the database/sql driver name the dialect belongs to
	Name() string
	// DSN builds the driver data source name from connection parameters
	DSN(p ConnParams) string
	// TablesSQL returns the catalog query listing object names of one kind.
	// AllTables is never passed; callers combine the other kinds.
	TablesSQL(kind TableKind) (string, []any)
}

var (
	mu       sync.RWMutex
	dialects = make(map[string]Dialect)
)

// Register registers a new dialect for a given driver name
func Register(name string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[name] = d
}

// Get retrieves a registered dialect by driver name
func Get(name string) (Dialect, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := dialects[name]
	return d, ok
}

// For returns the registered dialect for name, or a generic
// information_schema dialect when none is registered.
func For(name string) Dialect {
	if d, ok := Get(name); ok {
		return d
	}
	return &generic{name: name}
}
