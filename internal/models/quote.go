package models

import "time"

// Quote is an immutable priced estimate requested by an account.
type Quote struct {
	ID             string    `json:"quoteId"`
	AccountID      int64     `json:"userId"`
	Email          string    `json:"userEmail"`
	Service        string    `json:"service"`
	Tier           string    `json:"tier"`
	Subtype        string    `json:"type"`
	Pages          int       `json:"pages"`
	Features       []string  `json:"features"`
	Platforms      []string  `json:"platforms"`
	Price          int       `json:"priceNumber"`
	EstimatedHours int       `json:"estimatedHours"`
	Note           string    `json:"note,omitempty"`
	SaveToAccount  bool      `json:"saveToAccount"`
	CreatedAt      time.Time `json:"createdAt"`
}
