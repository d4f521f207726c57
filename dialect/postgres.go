package dialect

import (
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
)

// PostgreSQL dialect implementation
type postgres struct{}

func init() {
	Register("postgres", &postgres{})
}

func (d *postgres) Name() string {
	return "postgres"
}

// DSN builds a libpq keyword/value connection string. sslmode defaults to
// disable unless Params sets it.
func (d *postgres) DSN(p ConnParams) string {
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+quoteConnValue(value))
		}
	}

	add("host", p.Host)
	if p.Port > 0 {
		add("port", strconv.Itoa(p.Port))
	}
	add("dbname", p.DatabaseName)
	add("user", p.User)
	add("password", p.Password)

	keys := make([]string, 0, len(p.Params))
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, p.Params[k])
	}
	if _, ok := p.Params["sslmode"]; !ok {
		add("sslmode", "disable")
	}
	return strings.Join(parts, " ")
}

func (d *postgres) TablesSQL(kind TableKind) (string, []any) {
	switch kind {
	case SystemTables:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema IN ('pg_catalog', 'information_schema') ORDER BY table_name", nil
	case Views:
		return "SELECT table_name FROM information_schema.tables WHERE table_type = 'VIEW' AND table_schema NOT IN ('pg_catalog', 'information_schema') ORDER BY table_name", nil
	default:
		return "SELECT table_name FROM information_schema.tables WHERE table_type = 'BASE TABLE' AND table_schema NOT IN ('pg_catalog', 'information_schema') ORDER BY table_name", nil
	}
}

// quoteConnValue single-quotes v when it contains spaces, quotes or
// backslashes, as libpq expects.
func quoteConnValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
