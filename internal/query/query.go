// Package query описывает запросы к каталогу независимо от хранилища:
// один и тот же Query рендерится в SQL для PostgreSQL и вычисляется
// in-memory хранилищем.
package query

import (
	"fmt"
	"sort"
	"strings"
)

// Table логическая таблица хранилища.
type Table string

const (
	TableProfiles  Table = "profiles"
	TableGroups    Table = "groups"
	TableLocations Table = "locations"
)

// Schema перечисляет колонки, по которым разрешено фильтровать и сортировать.
var Schema = map[Table][]string{
	TableProfiles: {
		"id", "name", "bio", "user_type", "business_type", "primary_skill",
		"occupation", "hourly_rate", "service_type", "visibility", "location_id",
	},
	TableGroups: {
		"id", "name", "description", "category", "member_count", "scope",
		"is_public", "location_id",
	},
	TableLocations: {"id", "name", "type", "parent_id"},
}

// Op вид условия.
type Op string

const (
	OpEq          Op = "eq"
	OpIn          Op = "in"
	OpNotNull     Op = "not_null"
	OpContainsAny Op = "contains_any"
)

// Condition одно условие WHERE. Для OpContainsAny Columns объединяются через OR,
// для остальных операций используется ровно одна колонка.
type Condition struct {
	Op      Op
	Columns []string
	Values  []string
}

// Query неизменяемое описание запроса. Методы-построители возвращают копию.
type Query struct {
	Table   Table
	Where   []Condition
	OrderBy string
	Limit   int
}

// Record строка, из которой можно прочитать значение колонки.
// ok == false означает NULL.
type Record interface {
	Field(column string) (value string, ok bool)
}

// From начинает запрос к таблице.
func From(t Table) Query {
	return Query{Table: t}
}

// Eq требует точного совпадения колонки со значением.
func (q Query) Eq(column, value string) Query {
	return q.with(Condition{Op: OpEq, Columns: []string{column}, Values: []string{value}})
}

// In требует, чтобы значение колонки входило в набор.
func (q Query) In(column string, values ...string) Query {
	return q.with(Condition{Op: OpIn, Columns: []string{column}, Values: append([]string(nil), values...)})
}

// NotNull отбрасывает строки с NULL в колонке.
func (q Query) NotNull(column string) Query {
	return q.with(Condition{Op: OpNotNull, Columns: []string{column}})
}

// ContainsAny требует регистронезависимого вхождения needle хотя бы в одну из колонок.
func (q Query) ContainsAny(needle string, columns ...string) Query {
	return q.with(Condition{Op: OpContainsAny, Columns: append([]string(nil), columns...), Values: []string{needle}})
}

// Order задаёт колонку сортировки по возрастанию.
func (q Query) Order(column string) Query {
	q.Where = cloneConditions(q.Where)
	q.OrderBy = column
	return q
}

// WithLimit ограничивает количество строк. 0 означает без ограничения.
func (q Query) WithLimit(n int) Query {
	q.Where = cloneConditions(q.Where)
	q.Limit = n
	return q
}

func (q Query) with(c Condition) Query {
	q.Where = append(cloneConditions(q.Where), c)
	return q
}

func cloneConditions(in []Condition) []Condition {
	if len(in) == 0 {
		return nil
	}
	out := make([]Condition, len(in))
	copy(out, in)
	return out
}

// Validate проверяет, что запрос ссылается только на известные колонки таблицы.
func (q Query) Validate() error {
	cols, ok := Schema[q.Table]
	if !ok {
		return fmt.Errorf("query: неизвестная таблица %q", q.Table)
	}
	known := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		known[c] = struct{}{}
	}

	check := func(col string) error {
		if _, ok := known[col]; !ok {
			return fmt.Errorf("query: неизвестная колонка %s.%s", q.Table, col)
		}
		return nil
	}

	for _, cond := range q.Where {
		if len(cond.Columns) == 0 {
			return fmt.Errorf("query: условие %s без колонок", cond.Op)
		}
		if cond.Op != OpContainsAny && len(cond.Columns) != 1 {
			return fmt.Errorf("query: условие %s допускает одну колонку", cond.Op)
		}
		for _, col := range cond.Columns {
			if err := check(col); err != nil {
				return err
			}
		}
	}
	if q.OrderBy != "" {
		if err := check(q.OrderBy); err != nil {
			return err
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("query: отрицательный limit %d", q.Limit)
	}
	return nil
}

// Match вычисляет условие для одной строки.
func (c Condition) Match(r Record) bool {
	switch c.Op {
	case OpEq:
		v, ok := r.Field(c.Columns[0])
		return ok && len(c.Values) > 0 && v == c.Values[0]
	case OpIn:
		v, ok := r.Field(c.Columns[0])
		if !ok {
			return false
		}
		for _, want := range c.Values {
			if v == want {
				return true
			}
		}
		return false
	case OpNotNull:
		_, ok := r.Field(c.Columns[0])
		return ok
	case OpContainsAny:
		if len(c.Values) == 0 {
			return false
		}
		needle := strings.ToLower(c.Values[0])
		for _, col := range c.Columns {
			if v, ok := r.Field(col); ok && strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	}
	return false
}

// Match сообщает, проходит ли строка все условия запроса.
func (q Query) Match(r Record) bool {
	for _, cond := range q.Where {
		if !cond.Match(r) {
			return false
		}
	}
	return true
}

// Apply фильтрует, сортирует и обрезает строки так же, как это сделал бы SQL.
func Apply[T Record](q Query, rows []T) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if q.Match(row) {
			out = append(out, row)
		}
	}

	if q.OrderBy != "" {
		// Порядок совпадает с ORDER BY lower(col) COLLATE "C", id в PostgreSQL.
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := out[i].Field(q.OrderBy)
			b, _ := out[j].Field(q.OrderBy)
			if la, lb := strings.ToLower(a), strings.ToLower(b); la != lb {
				return la < lb
			}
			idA, _ := out[i].Field("id")
			idB, _ := out[j].Field("id")
			return idA < idB
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// LikePattern экранирует спецсимволы LIKE и оборачивает строку в %...%,
// чтобы ILIKE работал как поиск подстроки.
func LikePattern(needle string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(needle) + "%"
}
