// Package database builds parameterized listing queries for the portal's
// pgx-backed repositories. Identifiers are sanitized with pgx.Identifier;
// values always travel as positional parameters.
package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ConditionType is the comparison operator of a WHERE condition.
type ConditionType string

const (
	Equal       ConditionType = "="
	NotEqual    ConditionType = "!="
	GreaterThan ConditionType = ">"
	LessThan    ConditionType = "<"
	ILike       ConditionType = "ILIKE"
	In          ConditionType = "IN"
	Custom      ConditionType = "CUSTOM"
)

// unsetPagination marks LIMIT/OFFSET as not requested.
const unsetPagination = -1

// Condition is one WHERE predicate. Build with WhereCond or WhereRawCond.
type Condition struct {
	Field    string
	Type     ConditionType
	Value    any
	rawQuery *string
}

// WhereCond builds a field-operator-value condition.
func WhereCond(field string, condType ConditionType, value any) Condition {
	if condType == Custom {
		//nolint:forbidigo // panic prevents misuse; custom conditions must provide raw SQL via WhereRawCond.
		panic("use WhereRawCond for Custom conditions")
	}
	return Condition{Field: field, Type: condType, Value: value}
}

// WhereRawCond builds a condition from a raw SQL fragment with $1..$n
// placeholders for params. The fragment is NOT sanitized; never pass
// user input as part of it.
func WhereRawCond(rawQuery string, params ...any) Condition {
	var value any
	switch len(params) {
	case 0:
		value = nil
	case 1:
		value = params[0]
	default:
		value = params
	}
	return Condition{Type: Custom, rawQuery: &rawQuery, Value: value}
}

// ListQueryOptions describes one listing query over a single table.
type ListQueryOptions struct {
	Table      string
	Columns    []string
	Conditions []Condition
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

// ListQueryOption mutates ListQueryOptions.
type ListQueryOption func(*ListQueryOptions)

// NewListQueryOptions builds options for a listing query against table.
func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:  table,
		Limit:  unsetPagination,
		Offset: unsetPagination,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select. Each entry is a column name,
// optionally qualified ("jobs.title") or aliased ("company_name AS company").
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Columns = cols }
}

// WithCondition appends one WHERE condition; conditions are ANDed.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) { o.Conditions = append(o.Conditions, cond) }
}

// WithOrderBy sets the ordering column and direction ("ASC"/"DESC").
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithLimit sets the limit. Zero is a valid limit.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Zero is a valid offset.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// BuildListQuery renders options into a SQL string plus its positional
// arguments.
//
//	opts := NewListQueryOptions("jobs",
//		WithColumns("id", "title", "status"),
//		WithCondition(WhereCond("status", Equal, "open")),
//		WithOrderBy("created_at", "DESC"),
//		WithLimit(50),
//		WithOffset(0),
//	)
//	query, args := BuildListQuery(opts)
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder
	query.WriteString(selectClause(options.Columns))
	query.WriteString("FROM ")
	query.WriteString(sanitizeIdentifier(options.Table))

	whereClause, args, nextParam := buildWhereClause(options.Conditions, 1)
	if whereClause != "" {
		query.WriteString(" ")
		query.WriteString(whereClause)
	}

	tailClause, args := orderAndPageClause(options, nextParam, args)
	query.WriteString(tailClause)

	return query.String(), args
}

func selectClause(columns []string) string {
	if len(columns) == 0 {
		return "SELECT * "
	}

	rendered := make([]string, len(columns))
	for i, col := range columns {
		rendered[i] = renderColumn(col)
	}
	return "SELECT " + strings.Join(rendered, ", ") + " "
}

var aliasSplitRe = regexp.MustCompile(`(?i)\s+AS\s+`)

// renderColumn sanitizes a column spec of the form "column",
// "table.column", or "expr AS alias".
func renderColumn(spec string) string {
	if parts := aliasSplitRe.Split(spec, 2); len(parts) == 2 {
		return sanitizeQualifiedIdentifier(strings.TrimSpace(parts[0])) +
			" AS " + sanitizeIdentifier(strings.TrimSpace(parts[1]))
	}
	return sanitizeQualifiedIdentifier(strings.TrimSpace(spec))
}

func sanitizeIdentifier(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

// sanitizeQualifiedIdentifier quotes each dot-separated part, so
// "jobs.title" becomes "jobs"."title".
func sanitizeQualifiedIdentifier(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

func orderAndPageClause(options *ListQueryOptions, nextParam int, args []any) (string, []any) {
	var clause strings.Builder

	if options.OrderBy != "" {
		clause.WriteString(" ORDER BY ")
		clause.WriteString(sanitizeQualifiedIdentifier(options.OrderBy))
		if dir := strings.ToUpper(options.OrderDir); dir == "ASC" || dir == "DESC" {
			clause.WriteString(" ")
			clause.WriteString(dir)
		}
	}

	if options.Limit != unsetPagination {
		fmt.Fprintf(&clause, " LIMIT $%d", nextParam)
		args = append(args, options.Limit)
		nextParam++
	}
	if options.Offset != unsetPagination {
		fmt.Fprintf(&clause, " OFFSET $%d", nextParam)
		args = append(args, options.Offset)
	}

	return clause.String(), args
}

func buildWhereClause(inputConditions []Condition, startParam int) (string, []any, int) {
	rendered := make([]string, 0, len(inputConditions))
	args := []any{}
	nextParam := startParam

	for _, cond := range inputConditions {
		condSQL, condArgs, after := renderCondition(cond, nextParam)
		if condSQL == "" {
			continue
		}
		rendered = append(rendered, condSQL)
		args = append(args, condArgs...)
		nextParam = after
	}

	if len(rendered) == 0 {
		return "", args, nextParam
	}
	return "WHERE " + strings.Join(rendered, " AND "), args, nextParam
}

func renderCondition(cond Condition, nextParam int) (string, []any, int) {
	switch cond.Type {
	case Custom:
		return renderRawCondition(cond, nextParam)
	case In:
		if cond.Field == "" {
			return "", nil, nextParam
		}
		return renderInCondition(cond, nextParam)
	case Equal, NotEqual, GreaterThan, LessThan, ILike:
		if cond.Field == "" {
			return "", nil, nextParam
		}
		sql := fmt.Sprintf("%s %s $%d", sanitizeIdentifier(cond.Field), cond.Type, nextParam)
		return sql, []any{cond.Value}, nextParam + 1
	}
	return "", nil, nextParam
}

// renderInCondition expands a slice value into an IN list. Any slice type
// is accepted; an empty slice drops the condition rather than emitting
// invalid SQL.
func renderInCondition(cond Condition, nextParam int) (string, []any, int) {
	rv := reflect.ValueOf(cond.Value)
	if rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return "", nil, nextParam
	}

	placeholders := make([]string, rv.Len())
	args := make([]any, rv.Len())
	for i := range rv.Len() {
		placeholders[i] = fmt.Sprintf("$%d", nextParam)
		args[i] = rv.Index(i).Interface()
		nextParam++
	}
	sql := fmt.Sprintf("%s IN (%s)", sanitizeIdentifier(cond.Field), strings.Join(placeholders, ", "))
	return sql, args, nextParam
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// renderRawCondition renumbers the fragment's $1..$n placeholders so they
// continue the surrounding query's parameter sequence. Repeated
// placeholders map to the same renumbered parameter, and $10 is never
// mistaken for $1.
func renderRawCondition(cond Condition, nextParam int) (string, []any, int) {
	if cond.rawQuery == nil || *cond.rawQuery == "" {
		return "", nil, nextParam
	}

	if cond.Value == nil {
		return *cond.rawQuery, nil, nextParam
	}

	var params []any
	if slice, ok := cond.Value.([]any); ok {
		params = slice
	} else {
		params = []any{cond.Value}
	}

	args := []any{}
	renumbered := make(map[int]int)
	sql := placeholderRe.ReplaceAllStringFunc(*cond.rawQuery, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil {
			return m
		}
		if _, seen := renumbered[n]; !seen {
			if n < 1 || n > len(params) {
				return m // out-of-range placeholder, leave untouched
			}
			renumbered[n] = nextParam
			args = append(args, params[n-1])
			nextParam++
		}
		return fmt.Sprintf("$%d", renumbered[n])
	})

	return sql, args, nextParam
}
