package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/ignatzorin/directory-backend/internal/query"
)

// sqlBuilder рендерит условия query.Query в WHERE с плейсхолдерами $n.
type sqlBuilder struct {
	alias  string
	sb     strings.Builder
	args   []interface{}
	argNum int
}

func newSQLBuilder(alias string) *sqlBuilder {
	return &sqlBuilder{alias: alias, argNum: 1}
}

func (b *sqlBuilder) col(name string) string {
	return b.alias + "." + name
}

func (b *sqlBuilder) nextArg(v interface{}) string {
	b.args = append(b.args, v)
	ph := fmt.Sprintf("$%d", b.argNum)
	b.argNum++
	return ph
}

// where добавляет условия запроса. Колонки уже проверены через Validate.
func (b *sqlBuilder) where(q query.Query) {
	b.sb.WriteString(" WHERE TRUE")
	for _, cond := range q.Where {
		switch cond.Op {
		case query.OpEq:
			fmt.Fprintf(&b.sb, " AND %s = %s", b.col(cond.Columns[0]), b.nextArg(cond.Values[0]))
		case query.OpIn:
			fmt.Fprintf(&b.sb, " AND %s = ANY(%s)", b.col(cond.Columns[0]), b.nextArg(pq.Array(cond.Values)))
		case query.OpNotNull:
			fmt.Fprintf(&b.sb, " AND %s IS NOT NULL", b.col(cond.Columns[0]))
		case query.OpContainsAny:
			// Один аргумент на все колонки, как в поиске фрилансеров.
			ph := b.nextArg(query.LikePattern(cond.Values[0]))
			parts := make([]string, 0, len(cond.Columns))
			for _, c := range cond.Columns {
				parts = append(parts, fmt.Sprintf("%s ILIKE %s", b.col(c), ph))
			}
			fmt.Fprintf(&b.sb, " AND (%s)", strings.Join(parts, " OR "))
		}
	}
}

func (b *sqlBuilder) orderAndLimit(q query.Query) {
	if q.OrderBy != "" {
		// Байтовый порядок без учёта регистра, как у in-memory хранилища.
		fmt.Fprintf(&b.sb, ` ORDER BY lower(%s) COLLATE "C", %s`, b.col(q.OrderBy), b.col("id"))
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b.sb, " LIMIT %s", b.nextArg(q.Limit))
	}
}

func (b *sqlBuilder) String() string {
	return b.sb.String()
}
