package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ms-passes/internal/apperrors"
	"ms-passes/internal/factory"
	"ms-passes/internal/models"
)

type MockRegistryDB struct {
	mock.Mock
}

func (m *MockRegistryDB) GetConfig() (*models.FactoryConfig, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FactoryConfig), args.Error(1)
}

func (m *MockRegistryDB) RegisterPending(collection models.Collection) error {
	args := m.Called(collection)
	return args.Error(0)
}

func (m *MockRegistryDB) Resolve(correlationToken, address string) (*models.Collection, error) {
	args := m.Called(correlationToken, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockRegistryDB) GetBySymbol(symbol string) (*models.Collection, error) {
	args := m.Called(symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockRegistryDB) ListByArtist(artist string, limit int) ([]models.Collection, error) {
	args := m.Called(artist, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockRegistryDB) List(limit int) ([]models.Collection, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockRegistryDB) IsSymbolAvailable(symbol string) (bool, error) {
	args := m.Called(symbol)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistryDB) Count() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockRegistryDB) UpdateRoyalties(housePercentage, artistPercentage int) error {
	args := m.Called(housePercentage, artistPercentage)
	return args.Error(0)
}

func (m *MockRegistryDB) UpdateTemplateID(templateID string) error {
	args := m.Called(templateID)
	return args.Error(0)
}

type MockSymbolLock struct {
	mock.Mock
}

func (m *MockSymbolLock) Reserve(symbol string) (bool, error) {
	args := m.Called(symbol)
	return args.Bool(0), args.Error(1)
}

func (m *MockSymbolLock) Release(symbol string) error {
	args := m.Called(symbol)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishCreationRequest(req models.CreationRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func factoryConfig() *models.FactoryConfig {
	return &models.FactoryConfig{
		Admin:            "looopadmin",
		TemplateID:       "collection-service:v1",
		PassPrice:        10,
		PassDuration:     1200,
		GracePeriod:      300,
		SettlementDenom:  "uxion",
		PaymentAddress:   "looophouse",
		HousePercentage:  30,
		ArtistPercentage: 70,
	}
}

func newTestService(db *MockRegistryDB, lock *MockSymbolLock, pub *MockPublisher) *factory.Service {
	svc := &factory.Service{DB: db, Lock: lock, Kafka: pub}
	svc.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return svc
}

func createRequest(symbol string) factory.CreateCollectionRequest {
	return factory.CreateCollectionRequest{
		Name:           "Drake Collection",
		Symbol:         symbol,
		Artist:         "drakeaddress",
		Minter:         "looopminter",
		CollectionInfo: "ipfs://drake-collection",
	}
}

func TestCreateCollectionPublishesCorrelatedRequest(t *testing.T) {
	mockDB := new(MockRegistryDB)
	mockLock := new(MockSymbolLock)
	mockPub := new(MockPublisher)
	svc := newTestService(mockDB, mockLock, mockPub)

	mockDB.On("GetConfig").Return(factoryConfig(), nil)
	mockLock.On("Reserve", "DRAKE").Return(true, nil)
	mockLock.On("Release", "DRAKE").Return(nil)
	mockDB.On("RegisterPending", mock.MatchedBy(func(c models.Collection) bool {
		return c.Symbol == "DRAKE" && c.Artist == "drakeaddress" && c.Address == ""
	})).Return(nil)
	mockPub.On("PublishCreationRequest", mock.MatchedBy(func(req models.CreationRequest) bool {
		// The correlation token rides the request end to end, unmodified.
		return req.CorrelationToken == "DRAKE" &&
			req.TemplateID == "collection-service:v1" &&
			req.PassPrice == 10 &&
			req.HousePercentage == 30
	})).Return(nil)

	collection, err := svc.CreateCollection("looopadmin", createRequest("DRAKE"))
	assert.NoError(t, err)
	assert.Equal(t, models.CollectionStatusPending, collection.Status)
	assert.Empty(t, collection.Address)
	mockDB.AssertExpectations(t)
	mockLock.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestCreateCollectionNonAdmin(t *testing.T) {
	mockDB := new(MockRegistryDB)
	svc := newTestService(mockDB, new(MockSymbolLock), new(MockPublisher))

	mockDB.On("GetConfig").Return(factoryConfig(), nil)

	_, err := svc.CreateCollection("intruderaddr", createRequest("DRAKE"))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	mockDB.AssertNotCalled(t, "RegisterPending")
}

func TestCreateCollectionSymbolFormat(t *testing.T) {
	mockDB := new(MockRegistryDB)
	svc := newTestService(mockDB, new(MockSymbolLock), new(MockPublisher))

	mockDB.On("GetConfig").Return(factoryConfig(), nil)

	for _, symbol := range []string{"", "drake", "DRAKE 1", "DRAKE1", "Drake", "DR-AKE"} {
		_, err := svc.CreateCollection("looopadmin", createRequest(symbol))
		assert.ErrorIs(t, err, apperrors.ErrInvalidSymbolFormat, "symbol %q", symbol)
	}
	mockDB.AssertNotCalled(t, "RegisterPending")
}

func TestCreateCollectionDuplicateSymbol(t *testing.T) {
	mockDB := new(MockRegistryDB)
	mockLock := new(MockSymbolLock)
	mockPub := new(MockPublisher)
	svc := newTestService(mockDB, mockLock, mockPub)

	mockDB.On("GetConfig").Return(factoryConfig(), nil)
	mockLock.On("Reserve", "DRAKE").Return(true, nil)
	mockLock.On("Release", "DRAKE").Return(nil)
	mockDB.On("RegisterPending", mock.Anything).Return(apperrors.ErrSymbolAlreadyTaken)

	_, err := svc.CreateCollection("looopadmin", createRequest("DRAKE"))
	assert.ErrorIs(t, err, apperrors.ErrSymbolAlreadyTaken)
	// The reservation is released even when the insert fails.
	mockLock.AssertCalled(t, "Release", "DRAKE")
	mockPub.AssertNotCalled(t, "PublishCreationRequest")
}

func TestCreateCollectionSymbolReservedInFlight(t *testing.T) {
	mockDB := new(MockRegistryDB)
	mockLock := new(MockSymbolLock)
	svc := newTestService(mockDB, mockLock, new(MockPublisher))

	mockDB.On("GetConfig").Return(factoryConfig(), nil)
	mockLock.On("Reserve", "DRAKE").Return(false, nil)

	_, err := svc.CreateCollection("looopadmin", createRequest("DRAKE"))
	assert.ErrorIs(t, err, apperrors.ErrSymbolAlreadyTaken)
	mockDB.AssertNotCalled(t, "RegisterPending")
}

func TestCreateCollectionRoyaltyOverride(t *testing.T) {
	mockDB := new(MockRegistryDB)
	mockLock := new(MockSymbolLock)
	mockPub := new(MockPublisher)
	svc := newTestService(mockDB, mockLock, mockPub)

	mockDB.On("GetConfig").Return(factoryConfig(), nil)

	// Override that does not sum to 100 is rejected before anything is
	// reserved or stored.
	req := createRequest("DRAKE")
	req.HousePercentage = 50
	req.ArtistPercentage = 60
	_, err := svc.CreateCollection("looopadmin", req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRoyaltySum)
	mockLock.AssertNotCalled(t, "Reserve")

	// Negative pairs summing to 100 are rejected too.
	req.HousePercentage = -5
	req.ArtistPercentage = 105
	_, err = svc.CreateCollection("looopadmin", req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRoyaltySum)
	mockLock.AssertNotCalled(t, "Reserve")

	// A valid override is carried into both the entry and the request.
	mockLock.On("Reserve", "DRAKE").Return(true, nil)
	mockLock.On("Release", "DRAKE").Return(nil)
	mockDB.On("RegisterPending", mock.MatchedBy(func(c models.Collection) bool {
		return c.HousePercentage == 40 && c.ArtistPercentage == 60
	})).Return(nil)
	mockPub.On("PublishCreationRequest", mock.MatchedBy(func(r models.CreationRequest) bool {
		return r.HousePercentage == 40 && r.ArtistPercentage == 60
	})).Return(nil)

	req.HousePercentage = 40
	req.ArtistPercentage = 60
	_, err = svc.CreateCollection("looopadmin", req)
	assert.NoError(t, err)
	mockPub.AssertExpectations(t)
}

func TestResolveCreation(t *testing.T) {
	mockDB := new(MockRegistryDB)
	svc := newTestService(mockDB, new(MockSymbolLock), new(MockPublisher))

	mockDB.On("Resolve", "DRAKE", "collectiondrake").Return(&models.Collection{
		Symbol:  "DRAKE",
		Address: "collectiondrake",
		Status:  models.CollectionStatusResolved,
	}, nil)

	collection, err := svc.ResolveCreation(models.CreationAck{
		CorrelationToken: "DRAKE",
		Address:          "collectiondrake",
	})
	assert.NoError(t, err)
	assert.Equal(t, "collectiondrake", collection.Address)
	mockDB.AssertExpectations(t)
}

func TestResolveCreationUnknownToken(t *testing.T) {
	mockDB := new(MockRegistryDB)
	svc := newTestService(mockDB, new(MockSymbolLock), new(MockPublisher))

	mockDB.On("Resolve", "GHOST", "collectionghost").Return(nil, apperrors.ErrPendingCreationNotFound)

	_, err := svc.ResolveCreation(models.CreationAck{
		CorrelationToken: "GHOST",
		Address:          "collectionghost",
	})
	assert.ErrorIs(t, err, apperrors.ErrPendingCreationNotFound)
}

func TestResolveCreationMalformedAck(t *testing.T) {
	mockDB := new(MockRegistryDB)
	svc := newTestService(mockDB, new(MockSymbolLock), new(MockPublisher))

	_, err := svc.ResolveCreation(models.CreationAck{CorrelationToken: "", Address: "collectiondrake"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInstantiation)

	_, err = svc.ResolveCreation(models.CreationAck{CorrelationToken: "DRAKE", Address: "NOT VALID"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInstantiation)

	mockDB.AssertNotCalled(t, "Resolve")
}

func TestUpdateRoyalties(t *testing.T) {
	mockDB := new(MockRegistryDB)
	svc := newTestService(mockDB, new(MockSymbolLock), new(MockPublisher))

	mockDB.On("GetConfig").Return(factoryConfig(), nil)

	err := svc.UpdateRoyalties("intruderaddr", 40, 60)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = svc.UpdateRoyalties("looopadmin", 40, 70)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRoyaltySum)

	mockDB.On("UpdateRoyalties", 40, 60).Return(nil)
	err = svc.UpdateRoyalties("looopadmin", 40, 60)
	assert.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestUpdateTemplateID(t *testing.T) {
	mockDB := new(MockRegistryDB)
	svc := newTestService(mockDB, new(MockSymbolLock), new(MockPublisher))

	mockDB.On("GetConfig").Return(factoryConfig(), nil)

	err := svc.UpdateTemplateID("intruderaddr", "collection-service:v2")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	mockDB.On("UpdateTemplateID", "collection-service:v2").Return(nil)
	err = svc.UpdateTemplateID("looopadmin", "collection-service:v2")
	assert.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestConfigView(t *testing.T) {
	mockDB := new(MockRegistryDB)
	svc := newTestService(mockDB, new(MockSymbolLock), new(MockPublisher))

	mockDB.On("GetConfig").Return(factoryConfig(), nil)
	mockDB.On("Count").Return(5, nil)

	cfg, err := svc.Config()
	assert.NoError(t, err)
	assert.Equal(t, "looopadmin", cfg.Admin)
	assert.Equal(t, 5, cfg.TotalCollections)
	assert.Equal(t, 30, cfg.HousePercentage)
}

func TestIsSymbolAvailableRejectsBadFormat(t *testing.T) {
	mockDB := new(MockRegistryDB)
	svc := newTestService(mockDB, new(MockSymbolLock), new(MockPublisher))

	available, err := svc.IsSymbolAvailable("drake!")
	assert.NoError(t, err)
	assert.False(t, available)
	mockDB.AssertNotCalled(t, "IsSymbolAvailable")
}
