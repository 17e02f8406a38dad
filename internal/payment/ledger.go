package payment

import (
	"context"

	"github.com/uptrace/bun"

	"ms-passes/internal/models"
)

// Ledger reads payout records, one row per executed split.
type Ledger struct {
	Bun *bun.DB
}

// RecordPayout inserts one payout row. idb is usually a live transaction
// so the split commits together with the pass write it settles; a failed
// insert rolls the whole transition back.
func RecordPayout(ctx context.Context, idb bun.IDB, payout models.Payout) error {
	_, err := idb.NewInsert().Model(&payout).Exec(ctx)
	return err
}

func (l *Ledger) PayoutsByToken(tokenID string) ([]models.Payout, error) {
	var payouts []models.Payout
	err := l.Bun.NewSelect().
		Model(&payouts).
		Where("token_id = ?", tokenID).
		Order("created_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return payouts, nil
}

// ArtistTotal sums everything paid out to the artist side so far.
func (l *Ledger) ArtistTotal() (int64, error) {
	var total int64
	err := l.Bun.NewSelect().
		Model((*models.Payout)(nil)).
		ColumnExpr("COALESCE(SUM(artist_amount), 0)").
		Scan(context.Background(), &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}
