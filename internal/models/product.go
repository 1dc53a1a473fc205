package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int32
	ImageURL    string
	CategoryID  int64

	// Name of the linked category, filled by queries that join categories
	CategoryName string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Page of products with pagination metadata
type ProductPage struct {
	Products   []Product
	Page       int
	Limit      int
	TotalCount int64
	TotalPages int
}

func (p ProductPage) HasNextPage() bool {
	return p.Page < p.TotalPages
}

func (p ProductPage) HasPreviousPage() bool {
	return p.Page > 1
}
