package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name      string
		options   *ListQueryOptions
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "nil options",
			options:   nil,
			wantQuery: "",
			wantArgs:  nil,
		},
		{
			name:      "bare table select",
			options:   NewListQueryOptions("jobs"),
			wantQuery: `SELECT * FROM "jobs"`,
			wantArgs:  []any{},
		},
		{
			name: "columns and single condition",
			options: NewListQueryOptions("jobs",
				WithColumns("id", "title", "status"),
				WithCondition(WhereCond("status", Equal, "open")),
			),
			wantQuery: `SELECT "id", "title", "status" FROM "jobs" WHERE "status" = $1`,
			wantArgs:  []any{"open"},
		},
		{
			name: "multiple conditions are ANDed in order",
			options: NewListQueryOptions("jobs",
				WithCondition(WhereCond("status", Equal, "open")),
				WithCondition(WhereCond("category", Equal, "engineering")),
			),
			wantQuery: `SELECT * FROM "jobs" WHERE "status" = $1 AND "category" = $2`,
			wantArgs:  []any{"open", "engineering"},
		},
		{
			name: "order limit offset",
			options: NewListQueryOptions("jobs",
				WithOrderBy("created_at", "desc"),
				WithLimit(50),
				WithOffset(100),
			),
			wantQuery: `SELECT * FROM "jobs" ORDER BY "created_at" DESC LIMIT $1 OFFSET $2`,
			wantArgs:  []any{50, 100},
		},
		{
			name: "zero limit and offset are emitted",
			options: NewListQueryOptions("jobs",
				WithLimit(0),
				WithOffset(0),
			),
			wantQuery: `SELECT * FROM "jobs" LIMIT $1 OFFSET $2`,
			wantArgs:  []any{0, 0},
		},
		{
			name: "invalid order direction is dropped",
			options: NewListQueryOptions("jobs",
				WithOrderBy("created_at", "SIDEWAYS"),
			),
			wantQuery: `SELECT * FROM "jobs" ORDER BY "created_at"`,
			wantArgs:  []any{},
		},
		{
			name: "qualified and aliased columns",
			options: NewListQueryOptions("jobs",
				WithColumns("jobs.id", "company_name AS company"),
			),
			wantQuery: `SELECT "jobs"."id", "company_name" AS "company" FROM "jobs"`,
			wantArgs:  []any{},
		},
		{
			name: "in condition expands placeholders",
			options: NewListQueryOptions("jobs",
				WithCondition(WhereCond("type", In, []string{"full_time", "contract"})),
			),
			wantQuery: `SELECT * FROM "jobs" WHERE "type" IN ($1, $2)`,
			wantArgs:  []any{"full_time", "contract"},
		},
		{
			name: "in condition with empty slice is dropped",
			options: NewListQueryOptions("jobs",
				WithCondition(WhereCond("type", In, []string{})),
			),
			wantQuery: `SELECT * FROM "jobs"`,
			wantArgs:  []any{},
		},
		{
			name: "raw condition renumbers after prior params",
			options: NewListQueryOptions("jobs",
				WithCondition(WhereCond("status", Equal, "open")),
				WithCondition(WhereRawCond("(title ILIKE $1 OR company_name ILIKE $2)", "%go%", "%go%")),
				WithLimit(10),
			),
			wantQuery: `SELECT * FROM "jobs" WHERE "status" = $1 AND (title ILIKE $2 OR company_name ILIKE $3) LIMIT $4`,
			wantArgs:  []any{"open", "%go%", "%go%", 10},
		},
		{
			name: "raw condition reuses a repeated placeholder",
			options: NewListQueryOptions("jobs",
				WithCondition(WhereRawCond("(title ILIKE $1 OR description ILIKE $1)", "%remote%")),
			),
			wantQuery: `SELECT * FROM "jobs" WHERE (title ILIKE $1 OR description ILIKE $1)`,
			wantArgs:  []any{"%remote%"},
		},
		{
			name: "raw condition without params",
			options: NewListQueryOptions("jobs",
				WithCondition(WhereRawCond("salary_min IS NOT NULL")),
			),
			wantQuery: `SELECT * FROM "jobs" WHERE salary_min IS NOT NULL`,
			wantArgs:  []any{},
		},
		{
			name: "condition with empty field is dropped",
			options: NewListQueryOptions("jobs",
				WithCondition(WhereCond("", Equal, "x")),
				WithCondition(WhereCond("status", Equal, "open")),
			),
			wantQuery: `SELECT * FROM "jobs" WHERE "status" = $1`,
			wantArgs:  []any{"open"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := BuildListQuery(tt.options)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildListQuerySanitizesIdentifiers(t *testing.T) {
	query, args := BuildListQuery(NewListQueryOptions(
		`jobs"; DROP TABLE users; --`,
		WithCondition(WhereCond(`status" OR "1"="1`, Equal, "open")),
		WithOrderBy(`created_at"; --`, "DESC"),
	))

	// Malicious identifiers end up quoted, never executable.
	assert.Contains(t, query, `"jobs""; DROP TABLE users; --"`)
	assert.Contains(t, query, `"status"" OR ""1""=""1"`)
	assert.Contains(t, query, `"created_at""; --"`)
	assert.Equal(t, []any{"open"}, args)
}

func TestWhereCondPanicsOnCustomType(t *testing.T) {
	require.Panics(t, func() {
		WhereCond("field", Custom, "value")
	})
}

func TestBuildListQueryComposedLikeRepositories(t *testing.T) {
	// Shape of the query the posting repository builds for a filtered,
	// searched, paginated listing.
	q := "%engineer%"

	opts := NewListQueryOptions("jobs",
		WithColumns("id", "recruiter_id", "title", "company_name", "status", "created_at"),
		WithOrderBy("created_at", "DESC"),
		WithLimit(25),
		WithOffset(50),
		WithCondition(WhereCond("status", Equal, "open")),
		WithCondition(WhereRawCond("(title ILIKE $1 OR company_name ILIKE $2)", q, q)),
	)

	query, args := BuildListQuery(opts)
	require.Equal(t,
		`SELECT "id", "recruiter_id", "title", "company_name", "status", "created_at" `+
			`FROM "jobs" WHERE "status" = $1 AND (title ILIKE $2 OR company_name ILIKE $3) `+
			`ORDER BY "created_at" DESC LIMIT $4 OFFSET $5`,
		query,
	)
	assert.Equal(t, []any{"open", "%engineer%", "%engineer%", 25, 50}, args)
}
