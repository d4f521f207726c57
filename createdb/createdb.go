package createdb

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shrek82/namedsql/core"
	"github.com/shrek82/namedsql/dialect"
)

// Extension is appended to every created database file.
const Extension = ".sqlite"

var ErrNoFileName = errors.New("database file name is not set")

// Creator makes new, empty SQLite database files.
type Creator struct {
	// Dir is the target directory. Empty means DefaultDir().
	Dir string
	// FileName is the file stem used when UseMD5 is false.
	FileName string
	// DatabaseName is hashed into the stem when UseMD5 is true.
	DatabaseName string
	UseMD5       bool

	mu          sync.Mutex
	lastError   string
	lastCreated string
}

// DefaultDir returns the per-user data directory for database files:
// $XDG_DATA_HOME/namedsql, falling back to ~/.local/share/namedsql.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "namedsql"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "namedsql"), nil
}

// Stem returns the hex MD5 digest of name.
func Stem(name string) string {
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}

// Path returns the file the next Create call will write.
func (c *Creator) Path() (string, error) {
	stem := c.FileName
	if c.UseMD5 {
		if c.DatabaseName == "" {
			return "", fmt.Errorf("%w: DatabaseName is required with UseMD5", ErrNoFileName)
		}
		stem = Stem(c.DatabaseName)
	}
	if stem == "" {
		return "", ErrNoFileName
	}

	dir := c.Dir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return "", fmt.Errorf("resolving data directory: %w", err)
		}
		dir = d
	}
	return filepath.Join(dir, stem+Extension), nil
}

// Create writes an empty file at Path() and initialises a SQLite database
// in it. An existing file is never overwritten.
func (c *Creator) Create(ctx context.Context) (string, error) {
	path, err := c.create(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastError = err.Error()
		return "", err
	}
	c.lastError = ""
	c.lastCreated = path
	return path, nil
}

func (c *Creator) create(ctx context.Context) (string, error) {
	path, err := c.Path()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("could not open the file %s for writing: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if err := initialise(ctx, path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("error in opening the init database %s: %w", path, err)
	}
	return path, nil
}

// initialise writes the SQLite header into the empty file.
func initialise(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, stmt := range []string{
		"CREATE TABLE namedsql_init (id INTEGER)",
		"DROP TABLE namedsql_init",
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// LastError returns the message of the last failed Create, or "".
func (c *Creator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// LastCreated returns the path of the last database file created.
func (c *Creator) LastCreated() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCreated
}

// Config returns a SQLite connection config for the last created file,
// ready for Registry.Open.
func (c *Creator) Config(name string) (core.ConnectionConfig, bool) {
	path := c.LastCreated()
	if path == "" {
		return core.ConnectionConfig{}, false
	}
	return core.ConnectionConfig{Name: name, Driver: dialect.SQLite, DatabaseName: path}, true
}
