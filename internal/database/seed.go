package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"pressboard/internal/slug"
)

// seedCategories is the initial ad taxonomy for the printing and
// packaging trade. Slugs are derived from the names. Employment-like
// categories carry job-ad semantics (salary field in the UI, resume
// contact flow) and are flagged explicitly rather than detected from
// the name.
var seedCategories = []struct {
	name         string
	isEmployment bool
}{
	{"Job Offers", true},
	{"Job Seekers", true},
	{"Printing Equipment", false},
	{"Packaging Materials", false},
	{"Prepress Services", false},
	{"Finishing & Binding", false},
	{"Consumables & Inks", false},
}

// Seed inserts the ad taxonomy. Idempotent: each category is keyed by
// its derived slug and existing rows are left untouched. The default
// super-admin is created separately at startup so account creation goes
// through the user store like every other account.
func Seed(db *sql.DB) error {
	for i, c := range seedCategories {
		categorySlug := slug.Generate(c.name)
		_, err := db.Exec(`
			INSERT INTO categories (name, slug, is_employment, sort_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO NOTHING
		`, c.name, categorySlug, c.isEmployment, i)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", categorySlug, err)
		}
	}

	slog.Info("category taxonomy seeded", "categories", len(seedCategories))
	return nil
}
