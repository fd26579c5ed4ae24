package postgres

import (
	"fmt"
	"strings"
)

// selectQuery accumulates WHERE clauses with positional parameters. Clauses
// are written with one %d verb per argument, which Where replaces with the
// next parameter index.
type selectQuery struct {
	base  string
	where []string
	args  []interface{}
	order string
	limit int
}

func newSelect(base string) *selectQuery {
	return &selectQuery{base: base}
}

// Where appends a clause such as "a.hospital_id = $%d".
func (q *selectQuery) Where(clause string, args ...interface{}) *selectQuery {
	idx := make([]interface{}, len(args))
	for i := range args {
		idx[i] = len(q.args) + i + 1
	}
	q.where = append(q.where, fmt.Sprintf(clause, idx...))
	q.args = append(q.args, args...)
	return q
}

// WhereRaw appends a clause that takes no parameters.
func (q *selectQuery) WhereRaw(clause string) *selectQuery {
	q.where = append(q.where, clause)
	return q
}

func (q *selectQuery) OrderBy(order string) *selectQuery {
	q.order = order
	return q
}

// Limit caps the result; zero or negative leaves it unbounded.
func (q *selectQuery) Limit(n int) *selectQuery {
	q.limit = n
	return q
}

func (q *selectQuery) SQL() string {
	var b strings.Builder
	b.WriteString(q.base)
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	if q.order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.order)
	}
	if q.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.limit)
	}
	return b.String()
}

func (q *selectQuery) Args() []interface{} {
	return q.args
}

// likeContains escapes LIKE metacharacters and wraps s for a substring match.
func likeContains(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
