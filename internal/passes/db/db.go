package db

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"github.com/uptrace/bun"

	"ms-passes/internal/apperrors"
	"ms-passes/internal/models"
	"ms-passes/internal/payment"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetConfig() (*models.CollectionConfig, error) {
	var cfg models.CollectionConfig
	err := d.Bun.NewSelect().
		Model(&cfg).
		Where("id = 1").
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (d *DB) SaveConfig(cfg *models.CollectionConfig) error {
	cfg.ID = 1
	return d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.CollectionConfig)(nil)).
			Where("id = 1").
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(cfg).Exec(ctx)
		return err
	})
}

// NextTokenID increments the collection counter and returns the new value.
// The counter never wraps; at the top of the range minting stops for good.
func (d *DB) NextTokenID() (int64, error) {
	var next int64
	err := d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		var counter models.TokenCounter
		err := tx.NewSelect().Model(&counter).Where("id = 1").Limit(1).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			counter = models.TokenCounter{ID: 1, Current: 0}
			if _, err := tx.NewInsert().Model(&counter).Exec(ctx); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if counter.Current == math.MaxInt64 {
			return apperrors.ErrMaxSupplyReached
		}

		next = counter.Current + 1
		_, err = tx.NewUpdate().
			Model((*models.TokenCounter)(nil)).
			Set("current = ?", next).
			Where("id = 1").
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// CreatePass stores a new pass and its mint payout in one transaction.
// Either both rows land or neither does; a pass is never left minted with
// the payment unaccounted.
func (d *DB) CreatePass(pass models.Pass, payout models.Payout) error {
	return d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&pass).Exec(ctx); err != nil {
			return err
		}
		return payment.RecordPayout(ctx, tx, payout)
	})
}

func (d *DB) GetPass(tokenID string) (*models.Pass, error) {
	var pass models.Pass
	err := d.Bun.NewSelect().
		Model(&pass).
		Where("token_id = ?", tokenID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pass, nil
}

func (d *DB) PassExists(tokenID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Pass)(nil)).
		Where("token_id = ?", tokenID).
		Exists(context.Background())
}

// RenewPass writes the reset window and the renewal payout in one
// transaction, mirroring CreatePass.
func (d *DB) RenewPass(pass models.Pass, payout models.Payout) error {
	return d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model(&pass).
			Column("owner", "expires_at", "grace_period_end", "is_active", "times_renewed").
			Where("token_id = ?", pass.TokenID).
			Exec(ctx); err != nil {
			return err
		}
		return payment.RecordPayout(ctx, tx, payout)
	})
}

func (d *DB) RemovePass(tokenID string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Pass)(nil)).
		Where("token_id = ?", tokenID).
		Exec(context.Background())
	return err
}

func (d *DB) GetPassByOwner(owner string) (*models.Pass, error) {
	var pass models.Pass
	err := d.Bun.NewSelect().
		Model(&pass).
		Where("owner = ?", owner).
		Order("issued_at DESC").
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pass, nil
}

// LiveCount is the number of passes currently stored, burned ones excluded.
func (d *DB) LiveCount() (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Pass)(nil)).
		Count(context.Background())
}
