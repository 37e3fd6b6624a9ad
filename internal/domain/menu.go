package domain

import "github.com/shopspring/decimal"

type Category string

const (
	CategoryMain    Category = "main"
	CategorySide    Category = "side"
	CategoryDrink   Category = "drink"
	CategoryDessert Category = "dessert"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMain, CategorySide, CategoryDrink, CategoryDessert:
		return true
	}
	return false
}

type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       string          `json:"image,omitempty"`
	Available   bool            `json:"available"`
}
