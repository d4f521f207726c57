package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// rowKeywords are the statement keywords that produce a result set.
var rowKeywords = map[string]bool{
	"SELECT":   true,
	"VALUES":   true,
	"PRAGMA":   true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"DESCRIBE": true,
	"DESC":     true,
	"TABLE":    true,
}

// mainKeywords may follow the common table expressions of a WITH clause.
var mainKeywords = map[string]bool{
	"SELECT":  true,
	"VALUES":  true,
	"TABLE":   true,
	"INSERT":  true,
	"UPDATE":  true,
	"DELETE":  true,
	"REPLACE": true,
	"MERGE":   true,
}

// IsRowReturning reports whether a statement yields a result set rather
// than an affected-row count. The statement is classified by its leading
// keyword, or for WITH by the keyword that follows the common table
// expressions. A RETURNING clause at the outer level also yields rows.
// String literals, quoted identifiers and comments are never inspected.
func IsRowReturning(query string) bool {
	ws := words(query)
	if len(ws) == 0 {
		return false
	}
	outer := ws[0].depth
	for _, w := range ws {
		if w.depth == outer && w.text == "RETURNING" {
			return true
		}
	}
	if ws[0].text != "WITH" {
		return rowKeywords[ws[0].text]
	}
	for _, w := range ws[1:] {
		if w.depth == outer && mainKeywords[w.text] {
			return rowKeywords[w.text]
		}
	}
	// WITH x AS (...) (SELECT ...)
	return true
}

// word is a bare keyword or identifier and the parenthesis depth it sits at.
type word struct {
	text  string
	depth int
}

// words splits query into upper-cased bare words. Quoted text in any of the
// dialects' styles is skipped: 'literals', "identifiers", `identifiers`,
// [identifiers], $tag$ bodies$tag$ and both comment forms.
func words(query string) []word {
	var out []word
	depth := 0
	for i := 0; i < len(query); {
		c := query[i]
		switch {
		case strings.HasPrefix(query[i:], "--"):
			j := strings.IndexByte(query[i:], '\n')
			if j < 0 {
				return out
			}
			i += j + 1
		case strings.HasPrefix(query[i:], "/*"):
			j := strings.Index(query[i+2:], "*/")
			if j < 0 {
				return out
			}
			i += j + 4
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(query, i, c)
		case c == '[':
			i = skipQuoted(query, i, ']')
		case c == '$':
			i = skipDollar(query, i)
		case c == '(':
			depth++
			i++
		case c == ')':
			if depth > 0 {
				depth--
			}
			i++
		case isWordByte(c):
			j := i + 1
			for j < len(query) && isWordByte(query[j]) {
				j++
			}
			if !isDigit(c) {
				out = append(out, word{text: strings.ToUpper(query[i:j]), depth: depth})
			}
			i = j
		default:
			i++
		}
	}
	return out
}

// skipQuoted returns the index just past the quoted run opened at i and
// closed by end. A doubled closing character is an escaped one.
func skipQuoted(s string, i int, end byte) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] != end {
			continue
		}
		if j+1 < len(s) && s[j+1] == end {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}

// skipDollar skips a PostgreSQL dollar-quoted body. Positional parameters
// such as $1 are left to the caller.
func skipDollar(s string, i int) int {
	j := i + 1
	if j < len(s) && isDigit(s[j]) {
		return j
	}
	for j < len(s) && isWordByte(s[j]) {
		j++
	}
	if j >= len(s) || s[j] != '$' {
		return i + 1
	}
	tag := s[i : j+1]
	k := strings.Index(s[j+1:], tag)
	if k < 0 {
		return len(s)
	}
	return j + 1 + k + len(tag)
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 0x80 || isDigit(c) ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// grid is a fully drained result set.
type grid struct {
	columns []string
	rows    [][]any
}

// drain reads every row of rows in driver order. Byte slices are copied
// into strings because drivers reuse their buffers.
func drain(rows *sql.Rows) (*grid, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	g := &grid{columns: columns, rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		g.rows = append(g.rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// Text renders g with a tab between columns and a newline after each row.
func (g *grid) Text() string {
	var sb strings.Builder
	for _, row := range g.rows {
		for i, v := range row {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(FormatValue(v))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatValue converts a scanned field to its textual form. NULL becomes
// the empty string and times are written as RFC 3339.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

// prepared runs the shared prepare → execute path of Executor and
// ResultModel. Exactly one of the returned grid or affected count is used,
// depending on rowReturning.
func prepared(ctx context.Context, p interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}, query string, rowReturning bool) (*grid, int64, error) {
	stmt, err := p.PrepareContext(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: could not prepare query of %s Reason: %w", ErrStatementPrepare, query, err)
	}
	defer stmt.Close()

	if rowReturning {
		rows, err := stmt.QueryContext(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: could not run query of %s Reason: %w", ErrStatementExec, query, err)
		}
		defer rows.Close()

		g, err := drain(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: could not read rows of %s Reason: %w", ErrStatementExec, query, err)
		}
		return g, 0, nil
	}

	res, err := stmt.ExecContext(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: could not run query of %s Reason: %w", ErrStatementExec, query, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = UnknownRowsAffected
	}
	return nil, affected, nil
}

// UnknownRowsAffected is reported when the driver cannot count affected
// rows. Counts the driver does report, including its own negative values,
// are passed through unchanged.
const UnknownRowsAffected int64 = -1
