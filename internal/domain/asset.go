package domain

import "time"

// Asset describes a listed instrument.
type Asset struct {
	ID                string    `json:"id"`
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name"`
	Type              string    `json:"type"` // STOCK, FUND, ETF
	Currency          string    `json:"currency"`
	Exchange          string    `json:"exchange"`
	SharesOutstanding int64     `json:"shares_outstanding"`
	CreatedAt         time.Time `json:"created_at"`
}
