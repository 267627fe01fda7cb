// Package orm holds query helpers shared by the repositories.
package orm

import (
	"net/http"
	"strconv"

	"gorm.io/gorm"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination is the metadata returned beside a page of rows.
type Pagination struct {
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// Page is a requested window into a listing.
type Page struct {
	Number  int
	PerPage int
}

// PageFromRequest reads ?page= and ?per_page= with clamping.
func PageFromRequest(r *http.Request) Page {
	q := r.URL.Query()
	return NewPage(atoi(q.Get("page")), atoi(q.Get("per_page")))
}

func NewPage(number, perPage int) Page {
	if number < 1 {
		number = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Page{Number: number, PerPage: perPage}
}

func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

// Paginate counts the rows matched by q and loads the requested page into
// dest. q must carry its Model and filters only; ordering and preloads are
// applied to the page query alone.
func Paginate(q *gorm.DB, p Page, dest any, order string, preloads ...string) (Pagination, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	page := q.Session(&gorm.Session{}).Offset(p.Offset()).Limit(p.PerPage)
	if order != "" {
		page = page.Order(order)
	}
	for _, rel := range preloads {
		page = page.Preload(rel)
	}
	if err := page.Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	last := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if last < 1 {
		last = 1
	}
	return Pagination{Page: p.Number, PerPage: p.PerPage, Total: total, LastPage: last}, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
