package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Coin is one denominated amount attached to a mint or renew call.
type Coin struct {
	Denom  string `json:"denom"`
	Amount int64  `json:"amount"`
}

// Payout records one royalty split. HouseAmount + ArtistAmount always
// equals Gross.
type Payout struct {
	bun.BaseModel `bun:"table:payouts"`

	ID            string    `bun:"id,pk" json:"id"`
	Symbol        string    `bun:"symbol" json:"symbol"`
	TokenID       string    `bun:"token_id" json:"token_id"`
	Action        string    `bun:"action" json:"action"`
	Denom         string    `bun:"denom" json:"denom"`
	Gross         int64     `bun:"gross" json:"gross"`
	HouseAmount   int64     `bun:"house_amount" json:"house_amount"`
	ArtistAmount  int64     `bun:"artist_amount" json:"artist_amount"`
	HouseAddress  string    `bun:"house_address" json:"house_address"`
	ArtistAddress string    `bun:"artist_address" json:"artist_address"`
	CreatedAt     time.Time `bun:"created_at" json:"created_at"`
}
