package payment

import (
	"ms-passes/internal/apperrors"
	"ms-passes/internal/models"
)

// Split divides a gross payment between house and artist. The artist side
// is always the remainder of the house side so the two amounts sum to
// gross exactly, whatever the rounding.
func Split(gross int64, housePercentage int) (house, artist int64) {
	house = gross * int64(housePercentage) / 100
	artist = gross - house
	return house, artist
}

// Validate checks the funds attached to a mint or renew call against the
// configured settlement denom and price. Amounts in other denoms are
// ignored. Overpayment is accepted; the excess flows into the split and is
// not refunded.
func Validate(funds []models.Coin, denom string, price int64) (int64, error) {
	var total int64
	found := false
	for _, coin := range funds {
		if coin.Denom == denom {
			found = true
			total += coin.Amount
		}
	}
	if !found {
		return 0, apperrors.ErrPaymentMissing
	}
	if total < price {
		return 0, apperrors.ErrPaymentInsufficient
	}
	return total, nil
}
