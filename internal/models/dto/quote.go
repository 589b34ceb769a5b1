package dto

import "github.com/hongminglow/itarix-api/internal/models"

type CreateQuoteRequest struct {
	Service       string   `json:"service"`
	Tier          string   `json:"tier"`
	Type          string   `json:"type"`
	Pages         *int     `json:"pages"`
	Features      []string `json:"features"`
	Platforms     []string `json:"platforms"`
	Note          string   `json:"note"`
	SaveToAccount *bool    `json:"saveToAccount"`
}

type CreateQuoteResponse struct {
	Success     bool   `json:"success"`
	QuoteID     string `json:"quoteId"`
	PriceNumber int    `json:"priceNumber"`
	Hours       int    `json:"estimatedHours"`
}

type QuoteList struct {
	Items []models.Quote `json:"items"`
}
