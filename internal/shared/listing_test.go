package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clubsQuery = ListQuery{
	Table:    "clubs",
	Columns:  "id, name",
	Search:   []string{"name", "city"},
	Sortable: map[string]string{"name": "name", "city": "city"},
	Default:  "name",
}

func TestParseListFiltersDefaultsAndClamps(t *testing.T) {
	f := ParseListFilters(httptest.NewRequest(http.MethodGet, "/clubs?limit=500&dir=DESC&search=%20ajax%20", nil))
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, SortDesc, f.SortDir)
	assert.Equal(t, "ajax", f.Search)

	f = ParseListFilters(httptest.NewRequest(http.MethodGet, "/clubs?page=-2&dir=sideways", nil))
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, SortAsc, f.SortDir)
}

func TestListQueryBuildWithSearch(t *testing.T) {
	page, pageArgs, count, countArgs := clubsQuery.Build(ListFilters{Page: 2, Limit: 10, Search: "aj", SortBy: "city", SortDir: SortDesc})
	assert.Equal(t, "SELECT COUNT(*) FROM clubs WHERE 1=1 AND (name ILIKE $1 OR city ILIKE $1)", count)
	assert.Equal(t, []any{"%aj%"}, countArgs)
	assert.Equal(t, "SELECT id, name FROM clubs WHERE 1=1 AND (name ILIKE $1 OR city ILIKE $1) ORDER BY city DESC, id DESC LIMIT $2 OFFSET $3", page)
	assert.Equal(t, []any{"%aj%", 10, 10}, pageArgs)
}

func TestListQueryBuildIgnoresUnknownSortColumns(t *testing.T) {
	page, pageArgs, _, countArgs := clubsQuery.Build(ListFilters{Page: 1, Limit: 5, SortBy: "name; DROP TABLE clubs"})
	assert.Empty(t, countArgs)
	assert.Equal(t, "SELECT id, name FROM clubs WHERE 1=1 ORDER BY name ASC, id ASC LIMIT $1 OFFSET $2", page)
	assert.Equal(t, []any{5, 0}, pageArgs)
}

func TestHugePageKeepsOffsetPositive(t *testing.T) {
	f := ParseListFilters(httptest.NewRequest(http.MethodGet, "/clubs?page=9223372036854775807&limit=100", nil))
	assert.Equal(t, MaxPage, f.Page)

	_, pageArgs, _, _ := clubsQuery.Build(ListFilters{Page: 9223372036854775807, Limit: 100})
	require.Len(t, pageArgs, 2)
	assert.Equal(t, (MaxPage-1)*100, pageArgs[1])
	assert.Positive(t, pageArgs[1].(int))
}

func TestParseID(t *testing.T) {
	parse := func(raw string) (int64, error) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		return ParseID(req)
	}
	id, err := parse("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = parse("abc")
	assert.Error(t, err)
	_, err = parse("0")
	assert.Error(t, err)
}

func TestPageOf(t *testing.T) {
	page := PageOf([]string{"a", "b"}, ListFilters{Page: 1, Limit: 2}, 5)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 2, page.Pagination.PerPage)
}
