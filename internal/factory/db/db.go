package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-passes/internal/apperrors"
	"ms-passes/internal/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 30
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetConfig() (*models.FactoryConfig, error) {
	var cfg models.FactoryConfig
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

func (d *DB) SaveConfig(cfg *models.FactoryConfig) error {
	cfg.ID = 1
	return d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.FactoryConfig)(nil)).
			Where("id = 1").
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(cfg).Exec(ctx)
		return err
	})
}

// RegisterPending inserts a collection with no address yet and appends the
// symbol to the artist index. The symbol is the uniqueness domain: a
// pending entry blocks the symbol exactly like a resolved one.
func (d *DB) RegisterPending(collection models.Collection) error {
	return d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := tx.NewSelect().
			Model((*models.Collection)(nil)).
			Where("symbol = ?", collection.Symbol).
			Exists(ctx)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrSymbolAlreadyTaken
		}

		collection.Status = models.CollectionStatusPending
		collection.Address = ""
		if _, err := tx.NewInsert().Model(&collection).Exec(ctx); err != nil {
			return err
		}

		index := models.ArtistSymbol{Artist: collection.Artist, Symbol: collection.Symbol}
		_, err = tx.NewInsert().
			Model(&index).
			On("CONFLICT (artist, symbol) DO NOTHING").
			Exec(ctx)
		return err
	})
}

// Resolve writes the address onto the pending entry matching the
// correlation token. Exact match only; a second ack for the same token
// finds no pending row and fails, it is never reapplied.
func (d *DB) Resolve(correlationToken, address string) (*models.Collection, error) {
	var resolved models.Collection
	err := d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Collection)(nil)).
			Set("address = ?", address).
			Set("status = ?", models.CollectionStatusResolved).
			Where("symbol = ?", correlationToken).
			Where("status = ?", models.CollectionStatusPending).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperrors.ErrPendingCreationNotFound
		}

		return tx.NewSelect().
			Model(&resolved).
			Where("symbol = ?", correlationToken).
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

func (d *DB) GetBySymbol(symbol string) (*models.Collection, error) {
	var collection models.Collection
	err := d.Bun.NewSelect().
		Model(&collection).
		Where("symbol = ?", symbol).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrCollectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

func (d *DB) ListByArtist(artist string, limit int) ([]models.Collection, error) {
	var collections []models.Collection
	err := d.Bun.NewSelect().
		Model(&collections).
		Where("artist = ?", artist).
		Order("created_at ASC").
		Limit(clampLimit(limit)).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (d *DB) List(limit int) ([]models.Collection, error) {
	var collections []models.Collection
	err := d.Bun.NewSelect().
		Model(&collections).
		Order("created_at ASC").
		Limit(clampLimit(limit)).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (d *DB) IsSymbolAvailable(symbol string) (bool, error) {
	taken, err := d.Bun.NewSelect().
		Model((*models.Collection)(nil)).
		Where("symbol = ?", symbol).
		Exists(context.Background())
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (d *DB) Count() (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Collection)(nil)).
		Count(context.Background())
}

func (d *DB) UpdateRoyalties(housePercentage, artistPercentage int) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.FactoryConfig)(nil)).
		Set("house_percentage = ?", housePercentage).
		Set("artist_percentage = ?", artistPercentage).
		Where("id = 1").
		Exec(context.Background())
	return err
}

func (d *DB) UpdateTemplateID(templateID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.FactoryConfig)(nil)).
		Set("template_id = ?", templateID).
		Where("id = 1").
		Exec(context.Background())
	return err
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
