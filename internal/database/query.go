package database

import (
	"strings"
)

// QueryBuilder converts SQL queries with ? placeholders to dialect-specific format.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a new QueryBuilder for the given dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build converts a query with ? placeholders to dialect-specific placeholders.
// For SQLite, returns the query unchanged.
//
// Example:
//
//	input:    "SELECT body FROM levels WHERE name = ?"
//	SQLite:   "SELECT body FROM levels WHERE name = ?"
//	Postgres: "SELECT body FROM levels WHERE name = $1"
func (qb *QueryBuilder) Build(query string) string {
	if _, ok := qb.dialect.(*SQLiteDialect); ok {
		return query
	}

	var result strings.Builder
	position := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result.WriteString(qb.dialect.Placeholder(position))
			position++
		} else {
			result.WriteByte(query[i])
		}
	}
	return result.String()
}

// Upsert builds an insert that replaces the row on a key conflict. Both
// dialects accept ON CONFLICT ... DO UPDATE with the excluded row.
func (qb *QueryBuilder) Upsert(table, key string, columns []string) string {
	all := append([]string{key}, columns...)
	marks := make([]string, len(all))
	for i := range marks {
		marks[i] = "?"
	}
	sets := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		sets = append(sets, c+" = excluded."+c)
	}
	sets = append(sets, "updated_at = "+qb.dialect.Now())

	q := "INSERT INTO " + table + " (" + strings.Join(all, ", ") + ") VALUES (" +
		strings.Join(marks, ", ") + ") ON CONFLICT (" + key + ") DO UPDATE SET " +
		strings.Join(sets, ", ")
	return qb.Build(q)
}
