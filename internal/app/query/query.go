// Package query holds the pagination and sorting pieces shared by the listing endpoints.
//
// Only column expressions from a Sorter whitelist ever reach SQL text; every user supplied
// value goes through bind parameters.
package query

import (
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit inside int.
	MaxPage = math.MaxInt / MaxLimit
)

type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ParsePage reads page/limit query values, falling back to defaults on garbage.
func ParsePage(page, limit string) Page {
	p := Page{Page: DefaultPage, Limit: DefaultLimit}
	if n, err := strconv.Atoi(page); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limit); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Scope applies LIMIT/OFFSET.
func (p Page) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(p.Limit).Offset(p.Offset())
	}
}

type Sorter struct {
	// Fields maps a public sort key to the column expression it orders by.
	Fields  map[string]string
	Default string
}

// Clause returns "<column> ASC|DESC". Unknown keys fall back to Default, unknown orders to ASC.
func (s Sorter) Clause(sort, order string) string {
	column, ok := s.Fields[sort]
	if !ok {
		column = s.Fields[s.Default]
	}
	return column + " " + Direction(order)
}

func (s Sorter) Scope(sort, order string) func(*gorm.DB) *gorm.DB {
	clause := s.Clause(sort, order)
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(clause)
	}
}

func Direction(order string) string {
	if strings.EqualFold(order, "desc") {
		return "DESC"
	}
	return "ASC"
}

// Like wraps a search term for a case-insensitive substring match.
// Wildcards typed by the user are escaped.
func Like(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(term)) + "%"
}
