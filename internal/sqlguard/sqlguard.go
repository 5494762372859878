// Package sqlguard normalizes and validates caller-supplied SQL before
// execution. It enforces the single-statement and read-only-verb rules and
// injects a default row cap into queries that carry no LIMIT of their own.
package sqlguard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMultipleStatements indicates the input contained more than one
	// statement after the trailing terminator was stripped.
	ErrMultipleStatements = errors.New("multiple SQL statements are not allowed")

	// ErrUnsupportedStatement indicates the statement's leading verb is
	// neither SELECT nor WITH.
	ErrUnsupportedStatement = errors.New("only SELECT queries (including WITH clauses) are allowed")
)

// Validated is a normalized single read-only statement. SQL carries the
// original bind placeholders unchanged, with a trailing LIMIT appended when
// the original text had none.
type Validated struct {
	SQL  string
	Verb string // "SELECT" or "WITH"
}

// Validate normalizes raw (trim whitespace, strip one trailing semicolon),
// splits it into statements with a SQLite-aware scanner, classifies the
// leading verb case-insensitively, and appends "LIMIT rowLimit" when the
// normalized text does not contain the substring "limit".
//
// The LIMIT detection is deliberately textual, not syntactic: a "limit"
// occurring inside a string literal or subquery suppresses injection. This
// is a documented limitation kept for compatibility — making it syntax-aware
// would change observable capping behavior.
func Validate(raw string, rowLimit int) (Validated, error) {
	q := strings.TrimSpace(raw)
	if strings.HasSuffix(q, ";") {
		q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	}

	stmts := split(q)
	if len(stmts) == 0 {
		return Validated{}, fmt.Errorf("%w: empty query", ErrUnsupportedStatement)
	}
	if len(stmts) > 1 {
		return Validated{}, fmt.Errorf("%w: found %d statements", ErrMultipleStatements, len(stmts))
	}

	verb := leadingVerb(stmts[0])
	switch verb {
	case "SELECT", "WITH":
	case "":
		return Validated{}, fmt.Errorf("%w: statement has no leading keyword", ErrUnsupportedStatement)
	default:
		return Validated{}, fmt.Errorf("%w: got %s", ErrUnsupportedStatement, verb)
	}

	if !strings.Contains(strings.ToLower(q), "limit") {
		q = fmt.Sprintf("%s LIMIT %d", q, rowLimit)
	}

	return Validated{SQL: q, Verb: verb}, nil
}

// split separates q into statements on semicolons. Semicolons inside string
// literals, quoted identifiers, and comments do not count. SQLite quoting
// rules apply: '' escapes inside single-quoted strings, double-quote,
// backtick, and [bracket] identifiers, -- and /* */ comments. Blank
// segments are dropped so stray terminators do not count as statements.
func split(q string) []string {
	var stmts []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	i, n := 0, len(q)
	for i < n {
		c := q[i]
		switch {
		case c == ';':
			flush()
			i++

		case c == '-' && i+1 < n && q[i+1] == '-':
			for i < n && q[i] != '\n' {
				cur.WriteByte(q[i])
				i++
			}

		case c == '/' && i+1 < n && q[i+1] == '*':
			cur.WriteString("/*")
			i += 2
			for i < n {
				if q[i] == '*' && i+1 < n && q[i+1] == '/' {
					cur.WriteString("*/")
					i += 2
					break
				}
				cur.WriteByte(q[i])
				i++
			}

		case c == '\'':
			cur.WriteByte(c)
			i++
			for i < n {
				cur.WriteByte(q[i])
				if q[i] == '\'' {
					if i+1 < n && q[i+1] == '\'' {
						cur.WriteByte(q[i+1])
						i += 2
						continue
					}
					i++
					break
				}
				i++
			}

		case c == '"' || c == '`':
			quote := c
			cur.WriteByte(c)
			i++
			for i < n {
				cur.WriteByte(q[i])
				if q[i] == quote {
					i++
					break
				}
				i++
			}

		case c == '[':
			cur.WriteByte(c)
			i++
			for i < n {
				cur.WriteByte(q[i])
				if q[i] == ']' {
					i++
					break
				}
				i++
			}

		default:
			cur.WriteByte(c)
			i++
		}
	}
	flush()
	return stmts
}

// leadingVerb returns the first keyword of the statement, upper-cased,
// skipping leading whitespace and comments. Returns "" when the statement
// does not start with a keyword.
func leadingVerb(stmt string) string {
	i, n := 0, len(stmt)
	for i < n {
		switch {
		case stmt[i] == ' ' || stmt[i] == '\t' || stmt[i] == '\n' || stmt[i] == '\r':
			i++
		case stmt[i] == '-' && i+1 < n && stmt[i+1] == '-':
			for i < n && stmt[i] != '\n' {
				i++
			}
		case stmt[i] == '/' && i+1 < n && stmt[i+1] == '*':
			i += 2
			for i+1 < n && !(stmt[i] == '*' && stmt[i+1] == '/') {
				i++
			}
			i += 2
		default:
			start := i
			for i < n && isWordByte(stmt[i]) {
				i++
			}
			return strings.ToUpper(stmt[start:i])
		}
	}
	return ""
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
