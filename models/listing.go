package models

import "time"

// RawListing holds unprocessed comparable-listing data straight from the browser.
type RawListing struct {
	Title     string
	RawPrice  string
	Condition string
	Location  string
	URL       string
	Category  string
	ScrapedAt time.Time
}

// PricePoint is a cleaned comparable price, stored as reference data for a category.
type PricePoint struct {
	ID        int64
	Category  string
	Price     float64
	Region    string
	Condition ConditionLabel
	URL       string
	CreatedAt time.Time
}
