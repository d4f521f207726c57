package dialect

import (
	"net/url"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite dialect implementation
type sqlite3 struct{}

func init() {
	Register("sqlite3", &sqlite3{})
}

func (d *sqlite3) Name() string {
	return "sqlite3"
}

// DSN uses DatabaseName as the file path; an empty name opens a private
// in-memory database.
func (d *sqlite3) DSN(p ConnParams) string {
	name := p.DatabaseName
	if name == "" {
		name = ":memory:"
	}
	if len(p.Params) == 0 {
		return name
	}
	if !strings.HasPrefix(name, "file:") {
		name = "file:" + name
	}
	return name + "?" + encodeParams(p.Params)
}

func (d *sqlite3) TablesSQL(kind TableKind) (string, []any) {
	switch kind {
	case SystemTables:
		return "SELECT 'sqlite_master' UNION ALL SELECT name FROM sqlite_master WHERE type='table' AND name LIKE 'sqlite_%'", nil
	case Views:
		return "SELECT name FROM sqlite_master WHERE type='view' ORDER BY name", nil
	default:
		return "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name", nil
	}
}

func encodeParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		values.Set(k, params[k])
	}
	return values.Encode()
}
