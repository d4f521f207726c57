package dialect

import (
	"net"
	"net/url"
	"strconv"
)

// sqlserver covers the TDS driver. No driver is linked by default; the
// dialect is used once the host program imports one registered as
// "sqlserver".
type sqlserver struct{}

func init() {
	Register("sqlserver", &sqlserver{})
}

func (d *sqlserver) Name() string {
	return "sqlserver"
}

func (d *sqlserver) DSN(p ConnParams) string {
	host := p.Host
	if host == "" {
		host = "localhost"
	}
	if p.Port > 0 {
		host = net.JoinHostPort(host, strconv.Itoa(p.Port))
	}

	u := &url.URL{Scheme: "sqlserver", Host: host}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}

	q := url.Values{}
	if p.DatabaseName != "" {
		q.Set("database", p.DatabaseName)
	}
	for k, v := range p.Params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (d *sqlserver) TablesSQL(kind TableKind) (string, []any) {
	switch kind {
	case SystemTables:
		return "SELECT name FROM sys.system_views ORDER BY name", nil
	case Views:
		return "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'VIEW' ORDER BY TABLE_NAME", nil
	default:
		return "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME", nil
	}
}
