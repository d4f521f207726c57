package dialect

import (
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

// MySQL dialect implementation
type mysqlDialect struct{}

func init() {
	Register("mysql", &mysqlDialect{})
}

func (d *mysqlDialect) Name() string {
	return "mysql"
}

func (d *mysqlDialect) DSN(p ConnParams) string {
	host := p.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := p.Port
	if port == 0 {
		port = 3306
	}

	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = p.DatabaseName
	if len(p.Params) > 0 {
		cfg.Params = make(map[string]string, len(p.Params))
		for k, v := range p.Params {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN()
}

func (d *mysqlDialect) TablesSQL(kind TableKind) (string, []any) {
	switch kind {
	case SystemTables:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema IN ('mysql', 'information_schema', 'performance_schema', 'sys') ORDER BY table_name", nil
	case Views:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'VIEW' ORDER BY table_name", nil
	default:
		return "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ORDER BY table_name", nil
	}
}
