package models

import (
	"time"
)

type Category struct {
	ID          int64
	Name        string
	Description string

	// Number of products linked to the category
	// Filled by queries that join products, zero otherwise
	ProductCount int64

	CreatedAt time.Time
	UpdatedAt *time.Time
}
