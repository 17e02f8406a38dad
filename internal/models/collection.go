package models

import "github.com/uptrace/bun"

// Collection lifecycle states. A collection is pending from the moment the
// creation request is published until the provisioner's ack resolves its
// address.
const (
	CollectionStatusPending  = "pending"
	CollectionStatusResolved = "resolved"
)

type FactoryConfig struct {
	bun.BaseModel `bun:"table:factory_config"`

	ID               int64  `bun:"id,pk" json:"-"`
	Admin            string `bun:"admin" json:"admin"`
	TemplateID       string `bun:"template_id" json:"template_id"`
	PassPrice        int64  `bun:"pass_price" json:"pass_price"`
	PassDuration     int64  `bun:"pass_duration" json:"pass_duration"`
	GracePeriod      int64  `bun:"grace_period" json:"grace_period"`
	SettlementDenom  string `bun:"settlement_denom" json:"settlement_denom"`
	PaymentAddress   string `bun:"payment_address" json:"payment_address"`
	HousePercentage  int    `bun:"house_percentage" json:"house_percentage"`
	ArtistPercentage int    `bun:"artist_percentage" json:"artist_percentage"`
}

type Collection struct {
	bun.BaseModel `bun:"table:collections"`

	Symbol           string `bun:"symbol,pk" json:"symbol"`
	Name             string `bun:"name" json:"name"`
	Artist           string `bun:"artist" json:"artist"`
	Minter           string `bun:"minter" json:"minter"`
	Address          string `bun:"address" json:"address,omitempty"`
	Status           string `bun:"status" json:"status"`
	CollectionInfo   string `bun:"collection_info" json:"collection_info"`
	HousePercentage  int    `bun:"house_percentage" json:"house_percentage"`
	ArtistPercentage int    `bun:"artist_percentage" json:"artist_percentage"`
	CreatedAt        int64  `bun:"created_at" json:"created_at"`
}

// ArtistSymbol is one row of the artist -> symbols index. Append-only; the
// composite key deduplicates.
type ArtistSymbol struct {
	bun.BaseModel `bun:"table:artist_symbols"`

	Artist string `bun:"artist,pk" json:"artist"`
	Symbol string `bun:"symbol,pk" json:"symbol"`
}
