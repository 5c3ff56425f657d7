package query

import (
	"net/url"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testColumns = Columns("name", "created_at")

func TestParseDefaults(t *testing.T) {
	lq, err := Parse(url.Values{}, testColumns)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if lq.Page != DefaultPage || lq.Limit != DefaultLimit {
		t.Fatalf("expected defaults %d/%d, got %d/%d", DefaultPage, DefaultLimit, lq.Page, lq.Limit)
	}
	if len(lq.Filters) != 0 || len(lq.Sort) != 0 || len(lq.Fields) != 0 || lq.All {
		t.Fatalf("expected empty query, got %+v", lq)
	}
}

func TestParseFiltersAndOperators(t *testing.T) {
	values := url.Values{}
	values.Set("name", "attention")
	values.Set("created_at[gte]", "2024-01-01")

	lq, err := Parse(values, testColumns)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(lq.Filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(lq.Filters))
	}
	byColumn := map[string]Filter{}
	for _, f := range lq.Filters {
		byColumn[f.Column] = f
	}
	if f := byColumn["name"]; f.Op != "" || f.Value != "attention" {
		t.Fatalf("unexpected name filter: %+v", f)
	}
	if f := byColumn["created_at"]; f.Op != ">=" || f.Value != "2024-01-01" {
		t.Fatalf("unexpected created_at filter: %+v", f)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	cases := []url.Values{
		{"password": {"x"}},
		{"name[like]": {"x"}},
		{"sort": {"password"}},
		{"fields": {"name,password"}},
	}
	for _, values := range cases {
		if _, err := Parse(values, testColumns); err == nil {
			t.Fatalf("expected rejection for %v", values)
		}
	}
}

func TestParsePaginationAndSort(t *testing.T) {
	values := url.Values{}
	values.Set("page", "3")
	values.Set("limit", "10")
	values.Set("sort", "-created_at,name")
	values.Set("fields", "name")

	lq, err := Parse(values, testColumns)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if lq.Page != 3 || lq.Limit != 10 {
		t.Fatalf("unexpected pagination: %+v", lq)
	}
	if len(lq.Sort) != 2 || !lq.Sort[0].Desc || lq.Sort[0].Column != "created_at" || lq.Sort[1].Desc {
		t.Fatalf("unexpected sort: %+v", lq.Sort)
	}
	if len(lq.Fields) != 1 || lq.Fields[0] != "name" {
		t.Fatalf("unexpected fields: %+v", lq.Fields)
	}
}

func TestParseInvalidPagination(t *testing.T) {
	for _, values := range []url.Values{
		{"page": {"0"}},
		{"page": {"abc"}},
		{"limit": {"-1"}},
		{"all": {"maybe"}},
	} {
		if _, err := Parse(values, testColumns); err == nil {
			t.Fatalf("expected rejection for %v", values)
		}
	}
}

// dryRunDB builds SQL without a live connection.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=postgres dbname=dryrun",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func TestApplyBuildsSQL(t *testing.T) {
	db := dryRunDB(t)

	lq := &ListQuery{
		Filters: []Filter{
			{Column: "name", Value: "attention"},
			{Column: "created_at", Op: ">=", Value: "2024-01-01"},
		},
		Sort:   []SortField{{Column: "created_at", Desc: true}},
		Page:   2,
		Limit:  10,
		Fields: []string{"name"},
	}

	var rows []map[string]any
	stmt := lq.Apply(db.Table("thing")).Find(&rows).Statement

	sql := stmt.SQL.String()
	for _, want := range []string{
		`"name" = `,
		`"created_at" >= `,
		`ORDER BY "created_at" DESC`,
		`LIMIT`,
		`OFFSET`,
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("expected SQL to contain %q, got: %s", want, sql)
		}
	}
	if !strings.HasPrefix(sql, `SELECT name FROM`) {
		t.Fatalf("expected field selection, got: %s", sql)
	}
}

func TestApplyAllSkipsPagination(t *testing.T) {
	db := dryRunDB(t)

	lq := &ListQuery{Page: 5, Limit: 10, All: true}
	var rows []map[string]any
	sql := lq.Apply(db.Table("thing")).Find(&rows).Statement.SQL.String()
	if strings.Contains(sql, "LIMIT") || strings.Contains(sql, "OFFSET") {
		t.Fatalf("expected no pagination with all=true, got: %s", sql)
	}
}
