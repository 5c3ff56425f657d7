package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
)

// Reserved query-string keys that control the pipeline instead of filtering.
var reservedKeys = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
	"all":    true,
}

var operators = map[string]string{
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}

const (
	DefaultPage  = 1
	DefaultLimit = 25
)

type Filter struct {
	Column string
	Op     string
	Value  string
}

type SortField struct {
	Column string
	Desc   bool
}

// ListQuery is the parsed form of a list request: equality/comparison
// filters, sort order, pagination and field selection, applied in that
// order.
type ListQuery struct {
	Filters []Filter
	Sort    []SortField
	Page    int
	Limit   int
	Fields  []string
	All     bool
}

// Parse builds a ListQuery from raw query-string values. Every
// non-reserved key becomes a filter; `field[gte|gt|lte|lt]=v` becomes a
// comparison. Keys, sort fields and selected fields must appear in the
// allowed column set or the request is rejected.
func Parse(values url.Values, allowed map[string]string) (*ListQuery, error) {
	lq := &ListQuery{Page: DefaultPage, Limit: DefaultLimit}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		val := vals[0]
		if reservedKeys[key] {
			continue
		}

		field, op := splitOperator(key)
		column, ok := allowed[field]
		if !ok {
			return nil, apierr.BadRequest("cannot filter by %q", field)
		}
		lq.Filters = append(lq.Filters, Filter{Column: column, Op: op, Value: val})
	}

	if raw := values.Get("sort"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			desc := strings.HasPrefix(part, "-")
			field := strings.TrimPrefix(part, "-")
			column, ok := allowed[field]
			if !ok {
				return nil, apierr.BadRequest("cannot sort by %q", field)
			}
			lq.Sort = append(lq.Sort, SortField{Column: column, Desc: desc})
		}
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return nil, apierr.BadRequest("invalid page %q", raw)
		}
		lq.Page = page
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, apierr.BadRequest("invalid limit %q", raw)
		}
		lq.Limit = limit
	}
	if raw := values.Get("all"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apierr.BadRequest("invalid all %q", raw)
		}
		lq.All = all
	}

	if raw := values.Get("fields"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			column, ok := allowed[part]
			if !ok {
				return nil, apierr.BadRequest("cannot select field %q", part)
			}
			lq.Fields = append(lq.Fields, column)
		}
	}

	return lq, nil
}

// Apply chains the parsed query onto a base gorm query: filter, sort,
// paginate, select. Result ordering without an explicit sort is the store's
// default.
func (lq *ListQuery) Apply(db *gorm.DB) *gorm.DB {
	for _, f := range lq.Filters {
		if f.Op == "" {
			db = db.Where(fmt.Sprintf("%q = ?", f.Column), f.Value)
		} else {
			db = db.Where(fmt.Sprintf("%q %s ?", f.Column, f.Op), f.Value)
		}
	}

	for _, s := range lq.Sort {
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		db = db.Order(fmt.Sprintf("%q %s", s.Column, dir))
	}

	if !lq.All {
		db = db.Offset((lq.Page - 1) * lq.Limit).Limit(lq.Limit)
	}

	if len(lq.Fields) > 0 {
		db = db.Select(lq.Fields)
	}

	return db
}

func splitOperator(key string) (field, op string) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	keyword := key[open+1 : len(key)-1]
	if sqlOp, ok := operators[keyword]; ok {
		return key[:open], sqlOp
	}
	return key, ""
}

// Columns builds an identity column whitelist from the given names.
func Columns(names ...string) map[string]string {
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[n] = n
	}
	return m
}
