// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"pressboard/internal/models"
	"pressboard/internal/slug"
)

// CategoryStore manages the ad taxonomy in the database. The taxonomy is
// closed: rows are created by seeding or operator tooling, not by users.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, is_employment, sort_order, created_at, updated_at`

func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.IsEmployment, &c.SortOrder,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered for display, with published ad counts.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.is_employment, c.sort_order,
		       c.created_at, c.updated_at,
		       COUNT(a.id) FILTER (WHERE a.status = 'PUBLISHED' AND NOT a.is_deleted) AS ad_count
		FROM categories c
		LEFT JOIN ads a ON a.category_slug = c.slug
		GROUP BY c.id
		ORDER BY c.sort_order, c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.IsEmployment, &c.SortOrder,
			&c.CreatedAt, &c.UpdatedAt, &c.AdCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. The slug is derived
// from the name when the caller leaves it empty.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	categorySlug := c.Slug
	if categorySlug == "" {
		categorySlug = slug.Generate(c.Name)
	}
	row := s.db.QueryRow(`
		INSERT INTO categories (name, slug, is_employment, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		c.Name, categorySlug, c.IsEmployment, c.SortOrder,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}
