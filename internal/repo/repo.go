package repo

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// Sort orders by a database column. The column must come from a whitelist.
type Sort struct {
	Column string
	Desc   bool
}

func (s Sort) clauses(def string) []clause.OrderByColumn {
	col := s.Column
	if col == "" {
		col = def
	}
	out := []clause.OrderByColumn{{Column: clause.Column{Name: col}, Desc: s.Desc}}
	if col != "id" {
		out = append(out, clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: s.Desc})
	}
	return out
}

func applySort(q *gorm.DB, s Sort, def string) *gorm.DB {
	for _, c := range s.clauses(def) {
		q = q.Order(c)
	}
	return q
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
