package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shrek82/namedsql/config"
	"github.com/shrek82/namedsql/core"
	"github.com/shrek82/namedsql/createdb"
	"github.com/shrek82/namedsql/dialect"
	"github.com/shrek82/namedsql/logger"
	"github.com/shrek82/namedsql/middleware"
	"github.com/shrek82/namedsql/notify"
)

type app struct {
	configPath string
	logLevel   string
	connection string

	cfg       *config.Config
	log       logger.Logger
	registry  *core.Registry
	publisher *notify.RedisPublisher
	detach    []func()
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "namedsql",
		Short:         "Run SQL against named database connections",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}
	addGlobalFlags(root.PersistentFlags(), a)

	root.AddCommand(
		a.driversCmd(),
		a.tablesCmd(),
		a.queryCmd(),
		a.createCmd(),
	)
	return root, a
}

func addGlobalFlags(fs *pflag.FlagSet, a *app) {
	fs.StringVar(&a.configPath, "config", "", "config file (default: ./namedsql.yaml or $HOME/.config/namedsql/namedsql.yaml)")
	fs.StringVar(&a.logLevel, "log-level", "", "override log.level (silent, error, warn, info)")
	fs.StringVarP(&a.connection, "connection", "c", core.DefaultConnection, "connection name from the config file")
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if cfg.LogLevel, err = logger.ParseLevel(a.logLevel); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.log = cfg.Logger()

	opts := cfg.Pool
	a.registry = core.NewRegistry(&opts)
	a.registry.SetLogger(a.log)

	if cfg.RedisAddr != "" {
		p := notify.NewRedisPublisher(&redis.Options{Addr: cfg.RedisAddr}, cfg.RedisChannel)
		p.SetLogger(a.log)
		if err := p.Init(ctx); err != nil {
			a.log.Warn("event publishing disabled: %v", err)
			_ = p.Shutdown()
		} else {
			a.publisher = p
			a.detach = append(a.detach, p.Attach(a.registry))
		}
	}
	return nil
}

func (a *app) teardown() {
	if a.registry != nil {
		a.registry.CloseAll()
	}
	for _, d := range a.detach {
		d()
	}
	if a.publisher != nil {
		_ = a.publisher.Shutdown()
	}
}

// open opens the selected connection from the config file.
func (a *app) open(ctx context.Context) error {
	cfg, ok := a.cfg.Connection(a.connection)
	if !ok {
		return fmt.Errorf("%w: %q is not defined in the config file", core.ErrConnectionNotFound, a.connection)
	}
	return a.registry.Open(ctx, cfg)
}

func (a *app) driversCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "drivers",
		Short: "List the database drivers available in this build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !all {
				for _, name := range a.registry.AvailableDrivers() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			caps := a.registry.Capabilities()
			rows := make([][]string, 0, len(dialect.AllDrivers))
			for _, d := range dialect.AllDrivers {
				name, _ := d.SQLName()
				rows = append(rows, []string{d.String(), name, fmt.Sprint(caps.Supports(d))})
			}
			return renderTable(out, []string{"Driver", "SQL name", "Available"}, rows)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "show every known driver and whether it is available")
	return cmd
}

func (a *app) tablesCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List tables, views or system tables of a connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseTableKind(kind)
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			names, err := a.registry.ListTables(cmd.Context(), a.connection, k)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "tables", "tables, system, views or all")
	return cmd
}

func parseTableKind(s string) (dialect.TableKind, error) {
	switch strings.ToLower(s) {
	case "tables", "table":
		return dialect.Tables, nil
	case "system", "systemtables":
		return dialect.SystemTables, nil
	case "views", "view":
		return dialect.Views, nil
	case "all", "alltables":
		return dialect.AllTables, nil
	}
	return 0, fmt.Errorf("%w: %q", core.ErrInvalidTableKind, s)
}

func (a *app) queryCmd() *cobra.Command {
	var (
		asTable bool
		trace   bool
	)
	cmd := &cobra.Command{
		Use:   "query SQL",
		Short: "Run one statement and print its result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.open(ctx); err != nil {
				return err
			}
			sqlText := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			if asTable && core.IsRowReturning(sqlText) {
				return a.queryTable(ctx, out, sqlText)
			}

			exec := core.NewExecutor(a.registry)
			exec.SetLogger(a.log)
			if a.cfg.SlowThreshold > 0 {
				slow := middleware.NewSlowLog(a.cfg.SlowThreshold, a.cfg.SlowLogPath)
				if err := slow.Init(); err != nil {
					a.log.Warn("%v", err)
				}
				defer slow.Shutdown()
				exec.Use(slow)
			}
			if trace {
				exec.Use(middleware.NewTracing(a.log))
			}
			if a.publisher != nil {
				defer a.publisher.Attach(exec)()
			}

			res := exec.Execute(ctx, core.Request{Connection: a.connection, SQL: sqlText})
			switch res.Kind {
			case core.OutcomeRows:
				fmt.Fprint(out, res.Text)
			case core.OutcomeAffected:
				fmt.Fprintf(out, "%d row(s) affected\n", res.Affected)
			default:
				return res.Err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asTable, "table", false, "render rows as a table with a header")
	cmd.Flags().BoolVar(&trace, "trace", false, "log every statement with its outcome")
	return cmd
}

func (a *app) queryTable(ctx context.Context, out io.Writer, sqlText string) error {
	m := core.NewResultModel(a.registry)
	m.SetLogger(a.log)
	if a.publisher != nil {
		defer a.publisher.Attach(m)()
	}

	m.SetQuery(a.connection, sqlText)
	if err := m.Exec(ctx); err != nil {
		return err
	}

	rows := make([][]string, 0, m.RowCount())
	for r := 0; r < m.RowCount(); r++ {
		row := make([]string, m.ColumnCount())
		for c := range row {
			v, err := m.Value(r, c)
			if err != nil {
				return err
			}
			row[c] = core.FormatValue(v)
		}
		rows = append(rows, row)
	}
	return renderTable(out, m.FieldNames(), rows)
}

func (a *app) createCmd() *cobra.Command {
	c := &createdb.Creator{}
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty SQLite database file",
		Args:  cobra.ExactArgs(1),
		// create needs neither the config file nor a registry
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.UseMD5 {
				c.DatabaseName = args[0]
			} else {
				c.FileName = args[0]
			}
			path, err := c.Create(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.Dir, "dir", "", "target directory (default: the user data directory)")
	cmd.Flags().BoolVar(&c.UseMD5, "md5", false, "name the file after the MD5 of NAME")
	return cmd
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	cols := make([]any, len(header))
	for i, h := range header {
		cols[i] = h
	}
	table.Header(cols...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
