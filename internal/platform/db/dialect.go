package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Dialect identifiers supported by the database layer.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DialectName returns the active database dialect name.
func DialectName(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// IsSQLite reports whether the connection uses SQLite.
func IsSQLite(conn *gorm.DB) bool {
	return DialectName(conn) == DialectSQLite
}

// CaseInsensitiveLikeExpr returns a case-insensitive LIKE condition on column.
// Pair it with LikePattern for the bind value.
func CaseInsensitiveLikeExpr(conn *gorm.DB, column string) string {
	if IsSQLite(conn) {
		return fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", column)
	}
	return fmt.Sprintf("%s ILIKE ? ESCAPE '\\'", column)
}

// LikePattern wraps term in wildcards after escaping LIKE metacharacters.
func LikePattern(conn *gorm.DB, term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	if IsSQLite(conn) {
		escaped = strings.ToLower(escaped)
	}
	return "%" + escaped + "%"
}

// JSONExtractTextExpr returns a SQL expression extracting a top-level JSON key as text.
func JSONExtractTextExpr(conn *gorm.DB, column, key string) string {
	if IsSQLite(conn) {
		return fmt.Sprintf("json_extract(%s, '$.%s')", column, key)
	}
	return fmt.Sprintf("%s->>'%s'", column, key)
}
