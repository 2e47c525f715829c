package database

import (
	"testing"

	"pressboard/internal/slug"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed is keyed by slug and leaves existing rows alone. We call it
	// twice to verify idempotency. We don't clear the database first
	// because other test packages may be running concurrently against
	// the same database.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	// Every taxonomy row exists under the slug derived from its name.
	for _, c := range seedCategories {
		categorySlug := slug.Generate(c.name)
		var name string
		var isEmployment bool
		err := db.QueryRow(
			"SELECT name, is_employment FROM categories WHERE slug = $1", categorySlug,
		).Scan(&name, &isEmployment)
		if err != nil {
			t.Fatalf("category %s: %v", categorySlug, err)
		}
		if name != c.name {
			t.Errorf("category %s: name = %q, want %q", categorySlug, name, c.name)
		}
		if isEmployment != c.isEmployment {
			t.Errorf("category %s: is_employment = %v, want %v", categorySlug, isEmployment, c.isEmployment)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		t.Fatalf("count categories: %v", err)
	}
	if count < len(seedCategories) {
		t.Errorf("expected at least %d categories, got %d", len(seedCategories), count)
	}
}
