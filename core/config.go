package core

import (
	"fmt"
	"time"

	"github.com/shrek82/namedsql/dialect"
	"github.com/shrek82/namedsql/validator"
)

// DefaultConnection is the reserved name of the unnamed connection. It is
// looked up like any other name.
const DefaultConnection = ""

// ConnectionConfig describes one named connection. The registry copies it
// on Open; changing a config afterwards does not affect the open handle.
type ConnectionConfig struct {
	Name         string            `mapstructure:"name" json:"name"`
	Driver       dialect.Driver    `mapstructure:"-" json:"-"`
	Host         string            `mapstructure:"host" json:"host"`
	DatabaseName string            `mapstructure:"database" json:"database"`
	User         string            `mapstructure:"user" json:"user"`
	Password     string            `mapstructure:"password" json:"-"`
	Port         int               `mapstructure:"port" json:"port"`
	Params       map[string]string `mapstructure:"params" json:"params,omitempty"`
}

// sslModes are the values libpq accepts for the sslmode parameter.
var sslModes = []any{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

func (c ConnectionConfig) rules() validator.Rules {
	return validator.Rules{
		"Name": {
			validator.MaxLen(64).Msg("name must be at most 64 characters"),
		},
		"Host": {
			validator.NoSpace.Optional().Msg("host must not contain whitespace"),
		},
		"Port": {
			validator.Range(0, 65535).Msg("port must be between 0 and 65535"),
		},
		// ODBC resolves a data source name and InterBase opens a file; neither
		// has a default database.
		"DatabaseName": {
			validator.Required.When(func() bool {
				return c.Driver == dialect.ODBC || c.Driver == dialect.InterBase
			}).Msg(fmt.Sprintf("database is required for %s", c.Driver)),
		},
		"Params.sslmode": {
			validator.In(sslModes...).Optional().When(func() bool {
				return c.Driver == dialect.Postgres
			}),
		},
	}
}

// Validate checks the fields of the config. The driver itself is checked
// separately against the registry's capability table.
func (c ConnectionConfig) Validate() error {
	if err := c.rules().Validate(c); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidConfig, c.Name, err)
	}
	return nil
}

func (c ConnectionConfig) connParams() dialect.ConnParams {
	params := make(map[string]string, len(c.Params))
	for k, v := range c.Params {
		params[k] = v
	}
	return dialect.ConnParams{
		Host:         c.Host,
		DatabaseName: c.DatabaseName,
		User:         c.User,
		Password:     c.Password,
		Port:         c.Port,
		Params:       params,
	}
}

// Options defines registry-wide settings for the handles it opens.
// Each name holds a single session, so there is no MaxOpenConns.
type Options struct {
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// ConnectTimeout bounds the ping that establishes a session on Open.
	// Zero means the caller's context alone decides.
	ConnectTimeout time.Duration
}
