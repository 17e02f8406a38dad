package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-passes/internal/apperrors"
	"ms-passes/internal/factory/db"
	"ms-passes/internal/models"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	tables := []interface{}{
		(*models.FactoryConfig)(nil),
		(*models.Collection)(nil),
		(*models.ArtistSymbol)(nil),
	}
	for _, table := range tables {
		if _, err := bunDB.NewCreateTable().Model(table).Exec(context.Background()); err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func pendingCollection(symbol, artist string) models.Collection {
	return models.Collection{
		Symbol:           symbol,
		Name:             symbol + " Collection",
		Artist:           artist,
		Minter:           "looopminter",
		HousePercentage:  30,
		ArtistPercentage: 70,
		CreatedAt:        1700000000,
	}
}

func TestRegisterPendingAndLookup(t *testing.T) {
	registry, bunDB := setupTestDB(t)
	defer bunDB.Close()

	err := registry.RegisterPending(pendingCollection("DRAKE", "drakeaddress"))
	assert.NoError(t, err)

	got, err := registry.GetBySymbol("DRAKE")
	assert.NoError(t, err)
	assert.Equal(t, models.CollectionStatusPending, got.Status)
	assert.Empty(t, got.Address)

	available, err := registry.IsSymbolAvailable("DRAKE")
	assert.NoError(t, err)
	assert.False(t, available)

	available, err = registry.IsSymbolAvailable("DIFF")
	assert.NoError(t, err)
	assert.True(t, available)
}

func TestRegisterPendingDuplicateSymbol(t *testing.T) {
	registry, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, registry.RegisterPending(pendingCollection("DRAKE", "drakeaddress")))

	// A pending entry blocks the symbol just like a resolved one.
	err := registry.RegisterPending(pendingCollection("DRAKE", "otherartist"))
	assert.ErrorIs(t, err, apperrors.ErrSymbolAlreadyTaken)

	assert.NoError(t, registry.RegisterPending(pendingCollection("DIFF", "drakeaddress")))

	count, err := registry.Count()
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestResolveExactMatch(t *testing.T) {
	registry, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, registry.RegisterPending(pendingCollection("DRAKE", "drakeaddress")))
	assert.NoError(t, registry.RegisterPending(pendingCollection("WEEKND", "weekndaddress")))

	// Two creations in flight; the ack must land on its own entry, not
	// the first unresolved one.
	resolved, err := registry.Resolve("WEEKND", "collectionweeknd")
	assert.NoError(t, err)
	assert.Equal(t, "WEEKND", resolved.Symbol)
	assert.Equal(t, "collectionweeknd", resolved.Address)
	assert.Equal(t, models.CollectionStatusResolved, resolved.Status)

	// The other entry is untouched.
	drake, err := registry.GetBySymbol("DRAKE")
	assert.NoError(t, err)
	assert.Equal(t, models.CollectionStatusPending, drake.Status)
	assert.Empty(t, drake.Address)
}

func TestResolveUnknownToken(t *testing.T) {
	registry, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := registry.Resolve("GHOST", "collectionghost")
	assert.ErrorIs(t, err, apperrors.ErrPendingCreationNotFound)
}

func TestResolveTwiceRejected(t *testing.T) {
	registry, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, registry.RegisterPending(pendingCollection("DRAKE", "drakeaddress")))

	_, err := registry.Resolve("DRAKE", "collectiondrake")
	assert.NoError(t, err)

	// Duplicate delivery is rejected, not reapplied.
	_, err = registry.Resolve("DRAKE", "collectionother")
	assert.ErrorIs(t, err, apperrors.ErrPendingCreationNotFound)

	got, err := registry.GetBySymbol("DRAKE")
	assert.NoError(t, err)
	assert.Equal(t, "collectiondrake", got.Address)
}

func TestArtistIndex(t *testing.T) {
	registry, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, registry.RegisterPending(pendingCollection("DRAKE", "drakeaddress")))

	second := pendingCollection("OVO", "drakeaddress")
	second.CreatedAt = 1700000100
	assert.NoError(t, registry.RegisterPending(second))

	assert.NoError(t, registry.RegisterPending(pendingCollection("WEEKND", "weekndaddress")))

	collections, err := registry.ListByArtist("drakeaddress", 0)
	assert.NoError(t, err)
	assert.Len(t, collections, 2)
	assert.Equal(t, "DRAKE", collections[0].Symbol)
	assert.Equal(t, "OVO", collections[1].Symbol)
}

func TestListLimits(t *testing.T) {
	registry, bunDB := setupTestDB(t)
	defer bunDB.Close()

	symbols := []string{"AAA", "BBB", "CCC", "DDD", "EEE", "FFF", "GGG", "HHH", "III", "JJJ", "KKK", "LLL"}
	for i, symbol := range symbols {
		c := pendingCollection(symbol, "someartist")
		c.CreatedAt = int64(1700000000 + i)
		assert.NoError(t, registry.RegisterPending(c))
	}

	// Unspecified limit falls back to the default.
	collections, err := registry.List(0)
	assert.NoError(t, err)
	assert.Len(t, collections, db.DefaultLimit)

	collections, err = registry.List(3)
	assert.NoError(t, err)
	assert.Len(t, collections, 3)

	// Oversized limits are clamped.
	collections, err = registry.List(1000)
	assert.NoError(t, err)
	assert.Len(t, collections, len(symbols))
}

func TestUpdateRoyaltiesAndTemplate(t *testing.T) {
	registry, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, registry.SaveConfig(&models.FactoryConfig{
		Admin:            "looopadmin",
		TemplateID:       "collection-service:v1",
		HousePercentage:  30,
		ArtistPercentage: 70,
	}))

	assert.NoError(t, registry.UpdateRoyalties(40, 60))
	assert.NoError(t, registry.UpdateTemplateID("collection-service:v2"))

	cfg, err := registry.GetConfig()
	assert.NoError(t, err)
	assert.Equal(t, 40, cfg.HousePercentage)
	assert.Equal(t, 60, cfg.ArtistPercentage)
	assert.Equal(t, "collection-service:v2", cfg.TemplateID)
}
