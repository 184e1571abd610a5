package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/governance-api/internal/utils"
)

// Paginate limits a query to one page. A zero-sized page leaves the query unbounded.
func Paginate(page utils.Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page.Size <= 0 {
			return db
		}
		return db.Offset(page.Offset()).Limit(page.Size)
	}
}
