package dialect

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// generic serves drivers that have no dedicated dialect. It builds a
// URL-style DSN and reads the ANSI information_schema catalog.
type generic struct {
	name string
}

func (d *generic) Name() string {
	return d.name
}

func (d *generic) DSN(p ConnParams) string {
	if p.Host == "" && p.User == "" {
		return p.DatabaseName
	}

	host := p.Host
	if p.Port > 0 {
		host = net.JoinHostPort(host, strconv.Itoa(p.Port))
	}
	u := &url.URL{Scheme: d.name, Host: host, Path: "/" + strings.TrimPrefix(p.DatabaseName, "/")}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	if len(p.Params) > 0 {
		u.RawQuery = encodeParams(p.Params)
	}
	return u.String()
}

func (d *generic) TablesSQL(kind TableKind) (string, []any) {
	switch kind {
	case SystemTables:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = 'information_schema'", nil
	case Views:
		return "SELECT table_name FROM information_schema.tables WHERE table_type = 'VIEW'", nil
	default:
		return "SELECT table_name FROM information_schema.tables WHERE table_type = 'BASE TABLE'", nil
	}
}
