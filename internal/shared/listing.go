package shared

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/credisphere/credisphere/internal/platform/db"
	"github.com/credisphere/credisphere/internal/platform/httpx"
)

const (
	// DefaultPage is used when the page query parameter is absent.
	DefaultPage = 1
	// DefaultLimit is used when the limit query parameter is absent.
	DefaultLimit = 20
	// MaxLimit caps page sizes.
	MaxLimit = 100
	// MaxPage caps page numbers so the row offset cannot overflow.
	MaxPage = 1_000_000

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListFilters represents standard list endpoint filters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string
}

// ParseListFilters reads page, limit, search, sort and dir from the query string.
func ParseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	dir := strings.ToLower(q.Get("dir"))
	if dir != SortDesc {
		dir = SortAsc
	}
	return ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  strings.TrimSpace(q.Get("search")),
		SortBy:  q.Get("sort"),
		SortDir: dir,
	}
}

// ParseID reads the {id} URL parameter.
func ParseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.NewValidationError("id", "id must be a positive integer")
	}
	return id, nil
}

// ListQuery describes a paginated, searchable SELECT over one table.
type ListQuery struct {
	Table    string
	Columns  string
	Search   []string
	Sortable map[string]string
	Default  string
}

// Build renders the page and count statements for filters.
func (q ListQuery) Build(filters ListFilters) (page string, pageArgs []any, count string, countArgs []any) {
	where := " WHERE 1=1"
	if filters.Search != "" && len(q.Search) > 0 {
		clauses := make([]string, 0, len(q.Search))
		for _, col := range q.Search {
			clauses = append(clauses, col+" ILIKE $1")
		}
		where += " AND (" + strings.Join(clauses, " OR ") + ")"
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}
	count = "SELECT COUNT(*) FROM " + q.Table + where

	col, ok := q.Sortable[filters.SortBy]
	if !ok {
		col = q.Default
	}
	dir := "ASC"
	if filters.SortDir == SortDesc {
		dir = "DESC"
	}
	pageArgs = append(pageArgs, countArgs...)
	n := len(pageArgs)
	page = "SELECT " + q.Columns + " FROM " + q.Table + where +
		" ORDER BY " + col + " " + dir + ", id " + dir +
		" LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2)
	p := NewPagination(filters.Page, filters.Limit, 0)
	pageArgs = append(pageArgs, p.PerPage, p.Offset())
	return page, pageArgs, count, countArgs
}

// RunList executes the count and page statements, scanning each page row with
// scan. The statements run concurrently only when conn is a pool; a
// transaction cannot serve two queries at once.
func RunList[T any](ctx context.Context, conn db.DBTX, q ListQuery, filters ListFilters, scan func(pgx.Row) (T, error)) ([]T, int, error) {
	page, pageArgs, count, countArgs := q.Build(filters)
	var (
		total int
		items = []T{}
	)
	g, gctx := errgroup.WithContext(ctx)
	if _, pooled := conn.(*pgxpool.Pool); !pooled {
		g.SetLimit(1)
	}
	g.Go(func() error {
		return conn.QueryRow(gctx, count, countArgs...).Scan(&total)
	})
	g.Go(func() error {
		rows, err := conn.Query(gctx, page, pageArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, 0, db.Translate(err)
	}
	return items, total, nil
}

// PageOf wraps items into the list envelope.
func PageOf[T any](items []T, filters ListFilters, total int) httpx.Page[T] {
	return httpx.Page[T]{
		Data:       items,
		Pagination: NewPagination(filters.Page, filters.Limit, total).Wire(),
	}
}
