// Package dialect renders logical column types into destination SQL dialects.
//
// Rendering rules are kept in a Registry keyed by (LogicalType, Dialect). A Registry is built
// once and is read-only afterwards, so it can be shared by any number of goroutines.
package dialect

import (
	"fmt"
	"strconv"
	"strings"

	perrors "github.com/pkg/errors"
)

// Dialect identifies a destination SQL engine.
type Dialect int

const (
	MySQL Dialect = iota + 1
	MariaDB
	PostgreSQL
	SQLite
)

var dialectNames = map[Dialect]string{
	MySQL:      "mysql",
	MariaDB:    "mariadb",
	PostgreSQL: "postgresql",
	SQLite:     "sqlite",
}

var dialectAliases = map[string]Dialect{
	"postgres": PostgreSQL,
	"pg":       PostgreSQL,
	"sqlite3":  SQLite,
}

// Dialects returns all known dialects.
func Dialects() []Dialect {
	return []Dialect{MySQL, MariaDB, PostgreSQL, SQLite}
}

// ParseDialect parses a dialect name (case-insensitive).
func ParseDialect(s string) (Dialect, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range dialectNames {
		if name == s {
			return d, nil
		}
	}
	if d, ok := dialectAliases[s]; ok {
		return d, nil
	}
	return 0, perrors.Wrapf(ErrUnknownDialect, "%q", s)
}

// Valid reports whether d is a known dialect.
func (d Dialect) Valid() bool {
	_, ok := dialectNames[d]
	return ok
}

func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d Dialect) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, perrors.Wrapf(ErrUnknownDialect, "%d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dialect) UnmarshalText(text []byte) error {
	v, err := ParseDialect(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// QuoteIdentifier quotes a table or column name.
func (d Dialect) QuoteIdentifier(name string) string {
	switch d {
	case MySQL, MariaDB:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}

// Placeholder returns the i-th (1-based) bind parameter marker.
func (d Dialect) Placeholder(i int) string {
	if d == PostgreSQL {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// NumberPlaceholders rewrites the generic '?' markers in expr into this dialect's markers,
// starting from the (1-based) index next. It returns the rewritten expression and the next
// unused index. Quoted literals are left untouched.
func (d Dialect) NumberPlaceholders(expr string, next int) (string, int) {
	b := &strings.Builder{}
	quote := rune(0)
	for _, r := range expr {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			b.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			b.WriteRune(r)
		case r == '?':
			b.WriteString(d.Placeholder(next))
			next++
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), next
}
