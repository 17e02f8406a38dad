package models

import "github.com/uptrace/bun"

// CollectionConfig is the single-row config of one deployed collection,
// written once from the creation request parameters.
type CollectionConfig struct {
	bun.BaseModel `bun:"table:collection_config"`

	ID               int64  `bun:"id,pk" json:"-"`
	Name             string `bun:"name" json:"name"`
	Symbol           string `bun:"symbol" json:"symbol"`
	Artist           string `bun:"artist" json:"artist"`
	Minter           string `bun:"minter" json:"minter"`
	PassPrice        int64  `bun:"pass_price" json:"pass_price"`
	PassDuration     int64  `bun:"pass_duration" json:"pass_duration"`
	GracePeriod      int64  `bun:"grace_period" json:"grace_period"`
	SettlementDenom  string `bun:"settlement_denom" json:"settlement_denom"`
	PaymentAddress   string `bun:"payment_address" json:"payment_address"`
	CollectionInfo   string `bun:"collection_info" json:"collection_info"`
	HousePercentage  int    `bun:"house_percentage" json:"house_percentage"`
	ArtistPercentage int    `bun:"artist_percentage" json:"artist_percentage"`
}

type Pass struct {
	bun.BaseModel `bun:"table:passes"`

	TokenID        string `bun:"token_id,pk" json:"token_id"`
	Owner          string `bun:"owner" json:"owner"`
	ExpiresAt      int64  `bun:"expires_at" json:"expires_at"`
	GracePeriodEnd int64  `bun:"grace_period_end" json:"grace_period_end"`
	IsActive       bool   `bun:"is_active" json:"is_active"`
	TimesRenewed   int    `bun:"times_renewed" json:"times_renewed"`
	MetadataURI    string `bun:"metadata_uri" json:"metadata_uri"`
	IssuedAt       int64  `bun:"issued_at" json:"issued_at"`
}

// TokenCounter is the per-collection monotonic id counter. Never
// decremented, never reused; the service refuses to mint once it would
// overflow.
type TokenCounter struct {
	bun.BaseModel `bun:"table:token_counter"`

	ID      int64 `bun:"id,pk"`
	Current int64 `bun:"current"`
}
