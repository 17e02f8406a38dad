package models

// CreationRequest is published by the factory when a collection is
// registered. The provisioner deploys a collection instance from
// TemplateID and must echo CorrelationToken unmodified in its ack.
type CreationRequest struct {
	CorrelationToken string `json:"correlation_token"`
	TemplateID       string `json:"template_id"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	Artist           string `json:"artist"`
	Minter           string `json:"minter"`
	PassPrice        int64  `json:"pass_price"`
	PassDuration     int64  `json:"pass_duration"`
	GracePeriod      int64  `json:"grace_period"`
	SettlementDenom  string `json:"settlement_denom"`
	PaymentAddress   string `json:"payment_address"`
	CollectionInfo   string `json:"collection_info"`
	HousePercentage  int    `json:"house_percentage"`
	ArtistPercentage int    `json:"artist_percentage"`
	RequestedAt      int64  `json:"requested_at"`
}

// CreationAck is published by the provisioner once the collection instance
// is up and addressable.
type CreationAck struct {
	CorrelationToken string `json:"correlation_token"`
	Address          string `json:"address"`
}
