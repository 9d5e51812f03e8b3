package schema

import (
	"strings"

	"github.com/cdcstream/binlogavro/mysqlbinlog"
	"github.com/pkg/errors"
)

// sqlTypeNames maps a SQL column type keyword to the ColumnType the
// binlog row-image decoder actually produces for it on the wire.
// Several SQL names collapse onto a single wire type (e.g. every
// text/blob variant becomes TypeBlob — see mysqlbinlog's §4.4 table).
var sqlTypeNames = map[string]mysqlbinlog.ColumnType{
	"TINYINT":    mysqlbinlog.TypeTiny,
	"BOOL":       mysqlbinlog.TypeTiny,
	"BOOLEAN":    mysqlbinlog.TypeTiny,
	"SMALLINT":   mysqlbinlog.TypeShort,
	"MEDIUMINT":  mysqlbinlog.TypeInt24,
	"INT":        mysqlbinlog.TypeLong,
	"INTEGER":    mysqlbinlog.TypeLong,
	"BIGINT":     mysqlbinlog.TypeLongLong,
	"FLOAT":      mysqlbinlog.TypeFloat,
	"DOUBLE":     mysqlbinlog.TypeDouble,
	"DECIMAL":    mysqlbinlog.TypeNewDecimal,
	"NUMERIC":    mysqlbinlog.TypeNewDecimal,
	"DATE":       mysqlbinlog.TypeDate,
	"TIME":       mysqlbinlog.TypeTime2,
	"DATETIME":   mysqlbinlog.TypeDateTime2,
	"TIMESTAMP":  mysqlbinlog.TypeTimestamp2,
	"YEAR":       mysqlbinlog.TypeYear,
	"CHAR":       mysqlbinlog.TypeString,
	"VARCHAR":    mysqlbinlog.TypeVarchar,
	"BINARY":     mysqlbinlog.TypeString,
	"VARBINARY":  mysqlbinlog.TypeVarchar,
	"TINYTEXT":   mysqlbinlog.TypeBlob,
	"TEXT":       mysqlbinlog.TypeBlob,
	"MEDIUMTEXT": mysqlbinlog.TypeBlob,
	"LONGTEXT":   mysqlbinlog.TypeBlob,
	"TINYBLOB":   mysqlbinlog.TypeBlob,
	"BLOB":       mysqlbinlog.TypeBlob,
	"MEDIUMBLOB": mysqlbinlog.TypeBlob,
	"LONGBLOB":   mysqlbinlog.TypeBlob,
	"ENUM":       mysqlbinlog.TypeEnum,
	"SET":        mysqlbinlog.TypeSet,
	"BIT":        mysqlbinlog.TypeBit,
	"JSON":       mysqlbinlog.TypeJSON,
	"GEOMETRY":   mysqlbinlog.TypeGeometry,
}

// ParseCreateTable parses a normalized (mysqlbinlog.Normalize'd)
// "CREATE TABLE [db.]name (coldefs...) [options]" statement into an
// ordered column list. It is a small recursive-descent scan over the
// parenthesized column-definition list, tracking paren depth so commas
// inside ENUM('a,b') or DECIMAL(10,2) don't split a column definition.
func ParseCreateTable(ddl string) (table string, columns []ColumnDef, err error) {
	upper := strings.ToUpper(ddl)
	kw := "CREATE TABLE "
	idx := strings.Index(upper, kw)
	if idx == -1 {
		return "", nil, errors.Errorf("schema: not a CREATE TABLE statement: %q", ddl)
	}
	rest := strings.TrimSpace(ddl[idx+len(kw):])
	if strings.HasPrefix(strings.ToUpper(rest), "IF NOT EXISTS ") {
		rest = strings.TrimSpace(rest[len("IF NOT EXISTS "):])
	}

	open := strings.Index(rest, "(")
	if open == -1 {
		return "", nil, errors.Errorf("schema: CREATE TABLE missing column list: %q", ddl)
	}
	table = strings.TrimSpace(rest[:open])
	table = unquoteIdent(table)

	body, _, err := extractParen(rest[open:])
	if err != nil {
		return "", nil, errors.Wrapf(err, "schema: parsing CREATE TABLE %q", table)
	}

	defs := splitTopLevel(body)
	for _, def := range defs {
		def = strings.TrimSpace(def)
		if def == "" || isTableConstraint(def) {
			continue
		}
		col, err := parseColumnDef(def)
		if err != nil {
			return "", nil, errors.Wrapf(err, "schema: column definition %q", def)
		}
		columns = append(columns, col)
	}
	if len(columns) == 0 {
		return "", nil, errors.Errorf("schema: CREATE TABLE %q has no columns", table)
	}
	return table, columns, nil
}

// AlterKind classifies one clause of an ALTER TABLE statement.
type AlterKind int

const (
	AlterAddColumn AlterKind = iota
	AlterDropColumn
	AlterModifyColumn
)

// AlterClause is one structural change from an ALTER TABLE statement.
// Multiple clauses may appear in a single ALTER (comma-separated).
type AlterClause struct {
	Kind   AlterKind
	Column ColumnDef // set for AlterAddColumn/AlterModifyColumn
	Name   string    // set for AlterDropColumn
}

// ParseAlterTable parses a normalized "ALTER TABLE [db.]name clause[,
// clause...]" statement into its structural clauses. Non-structural
// clauses (RENAME, ENGINE=, etc.) are skipped, matching spec.md §4.5's
// scope (ADD/DROP/MODIFY COLUMN only).
func ParseAlterTable(ddl string) (table string, clauses []AlterClause, err error) {
	upper := strings.ToUpper(ddl)
	kw := "ALTER TABLE "
	idx := strings.Index(upper, kw)
	if idx == -1 {
		return "", nil, errors.Errorf("schema: not an ALTER TABLE statement: %q", ddl)
	}
	rest := strings.TrimSpace(ddl[idx+len(kw):])

	sp := strings.IndexAny(rest, " \t")
	if sp == -1 {
		return "", nil, errors.Errorf("schema: ALTER TABLE missing clauses: %q", ddl)
	}
	table = unquoteIdent(strings.TrimSpace(rest[:sp]))
	rest = strings.TrimSpace(rest[sp:])

	for _, part := range splitTopLevel(rest) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		up := strings.ToUpper(part)
		switch {
		case strings.HasPrefix(up, "ADD COLUMN "):
			col, err := parseColumnDef(strings.TrimSpace(part[len("ADD COLUMN "):]))
			if err != nil {
				return "", nil, errors.Wrapf(err, "schema: ALTER ADD COLUMN %q", part)
			}
			clauses = append(clauses, AlterClause{Kind: AlterAddColumn, Column: col})
		case strings.HasPrefix(up, "ADD "):
			col, err := parseColumnDef(strings.TrimSpace(part[len("ADD "):]))
			if err != nil {
				return "", nil, errors.Wrapf(err, "schema: ALTER ADD %q", part)
			}
			clauses = append(clauses, AlterClause{Kind: AlterAddColumn, Column: col})
		case strings.HasPrefix(up, "DROP COLUMN "):
			name := unquoteIdent(strings.TrimSpace(part[len("DROP COLUMN "):]))
			clauses = append(clauses, AlterClause{Kind: AlterDropColumn, Name: name})
		case strings.HasPrefix(up, "DROP "):
			name := unquoteIdent(strings.TrimSpace(part[len("DROP "):]))
			clauses = append(clauses, AlterClause{Kind: AlterDropColumn, Name: name})
		case strings.HasPrefix(up, "MODIFY COLUMN "):
			col, err := parseColumnDef(strings.TrimSpace(part[len("MODIFY COLUMN "):]))
			if err != nil {
				return "", nil, errors.Wrapf(err, "schema: ALTER MODIFY COLUMN %q", part)
			}
			clauses = append(clauses, AlterClause{Kind: AlterModifyColumn, Column: col})
		case strings.HasPrefix(up, "MODIFY "):
			col, err := parseColumnDef(strings.TrimSpace(part[len("MODIFY "):]))
			if err != nil {
				return "", nil, errors.Wrapf(err, "schema: ALTER MODIFY %q", part)
			}
			clauses = append(clauses, AlterClause{Kind: AlterModifyColumn, Column: col})
		case strings.HasPrefix(up, "CHANGE COLUMN "), strings.HasPrefix(up, "CHANGE "):
			// CHANGE old new type... is rare in practice; not structurally
			// supported, left as a no-op clause rather than an error so the
			// rest of the ALTER still applies.
		default:
			// RENAME TO, ENGINE=, ALGORITHM=, etc: not structural, skipped.
		}
	}
	return table, clauses, nil
}

func parseColumnDef(def string) (ColumnDef, error) {
	fields := tokenize(def)
	if len(fields) < 2 {
		return ColumnDef{}, errors.Errorf("expected at least a name and type")
	}
	name := unquoteIdent(fields[0])
	typeTok := strings.ToUpper(fields[1])
	// Strip any parenthesized length/precision/enum-value-list suffix
	// already separated out by tokenize, e.g. "VARCHAR(255)" -> "VARCHAR".
	if p := strings.IndexByte(typeTok, '('); p != -1 {
		typeTok = typeTok[:p]
	}
	ct, ok := sqlTypeNames[typeTok]
	if !ok {
		return ColumnDef{}, errors.Errorf("unknown column type %q", fields[1])
	}
	nullable := true
	rest := strings.ToUpper(strings.Join(fields[2:], " "))
	if strings.Contains(rest, "NOT NULL") {
		nullable = false
	}
	if strings.Contains(rest, "PRIMARY KEY") {
		nullable = false
	}
	return ColumnDef{Name: name, Type: ct, Nullable: nullable}, nil
}

// tokenize splits a single column definition into [name, type(...), rest...]
// words, keeping a type's parenthesized argument list glued to the type
// keyword (e.g. `id INT(11) NOT NULL` -> ["id", "INT(11)", "NOT", "NULL"]).
func tokenize(def string) []string {
	var tokens []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range def {
		switch {
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			depth--
			cur.WriteRune(r)
		case (r == ' ' || r == '\t') && depth == 0:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// splitTopLevel splits s on commas at paren depth 0.
func splitTopLevel(s string) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
			cur.WriteRune(r)
		case ')':
			depth--
			cur.WriteRune(r)
		case ',':
			if depth == 0 {
				parts = append(parts, cur.String())
				cur.Reset()
				continue
			}
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// extractParen returns the contents of the first balanced (...) group at
// the start of s (s[0] must be '(') and the remainder following it.
func extractParen(s string) (body, remainder string, err error) {
	if len(s) == 0 || s[0] != '(' {
		return "", "", errors.New("expected '('")
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], nil
			}
		}
	}
	return "", "", errors.New("unbalanced parentheses")
}

func isTableConstraint(def string) bool {
	up := strings.ToUpper(strings.TrimSpace(def))
	for _, kw := range []string{"PRIMARY KEY", "UNIQUE KEY", "UNIQUE ", "KEY ", "INDEX ", "CONSTRAINT ", "FOREIGN KEY", "CHECK ("} {
		if strings.HasPrefix(up, kw) {
			return true
		}
	}
	return false
}

func unquoteIdent(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`\"")
	return s
}
