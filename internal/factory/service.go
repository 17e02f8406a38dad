package factory

import (
	"fmt"
	"time"

	"ms-passes/internal/apperrors"
	"ms-passes/internal/identity"
	"ms-passes/internal/logger"
	"ms-passes/internal/models"
)

type RegistryDB interface {
	GetConfig() (*models.FactoryConfig, error)
	RegisterPending(collection models.Collection) error
	Resolve(correlationToken, address string) (*models.Collection, error)
	GetBySymbol(symbol string) (*models.Collection, error)
	ListByArtist(artist string, limit int) ([]models.Collection, error)
	List(limit int) ([]models.Collection, error)
	IsSymbolAvailable(symbol string) (bool, error)
	Count() (int, error)
	UpdateRoyalties(housePercentage, artistPercentage int) error
	UpdateTemplateID(templateID string) error
}

type SymbolLock interface {
	Reserve(symbol string) (bool, error)
	Release(symbol string) error
}

type CreationPublisher interface {
	PublishCreationRequest(req models.CreationRequest) error
}

type Service struct {
	DB     RegistryDB
	Lock   SymbolLock
	Kafka  CreationPublisher
	Logger *logger.Logger

	Now func() time.Time
}

func NewService(db RegistryDB, lock SymbolLock, kafka CreationPublisher, log *logger.Logger) *Service {
	return &Service{DB: db, Lock: lock, Kafka: kafka, Logger: log, Now: time.Now}
}

type CreateCollectionRequest struct {
	Name           string `json:"name"`
	Symbol         string `json:"symbol"`
	Artist         string `json:"artist"`
	Minter         string `json:"minter"`
	CollectionInfo string `json:"collection_info"`

	// Optional per-collection royalty override; zero values fall back to
	// the factory config pair.
	HousePercentage  int `json:"house_percentage,omitempty"`
	ArtistPercentage int `json:"artist_percentage,omitempty"`
}

type ConfigView struct {
	Admin            string `json:"admin"`
	TemplateID       string `json:"template_id"`
	TotalCollections int    `json:"total_collections"`
	HousePercentage  int    `json:"house_percentage"`
	ArtistPercentage int    `json:"artist_percentage"`
}

// CreateCollection registers a pending collection and publishes the
// creation request. The symbol doubles as the correlation token: it is
// unique for the life of the registry and the provisioner echoes it back
// unchanged, so the ack resolves exactly one entry. The call returns as
// soon as the request is published; the address arrives later via
// ResolveCreation.
func (s *Service) CreateCollection(caller string, req CreateCollectionRequest) (*models.Collection, error) {
	cfg, err := s.DB.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("load factory config: %w", err)
	}
	if caller != cfg.Admin {
		return nil, apperrors.ErrUnauthorized
	}

	if !validSymbol(req.Symbol) {
		return nil, apperrors.ErrInvalidSymbolFormat
	}
	artist, err := identity.Validate(req.Artist)
	if err != nil {
		return nil, fmt.Errorf("artist: %w", err)
	}
	minter, err := identity.Validate(req.Minter)
	if err != nil {
		return nil, fmt.Errorf("minter: %w", err)
	}

	housePct, artistPct := cfg.HousePercentage, cfg.ArtistPercentage
	if req.HousePercentage != 0 || req.ArtistPercentage != 0 {
		if req.HousePercentage+req.ArtistPercentage != 100 ||
			req.HousePercentage < 0 || req.ArtistPercentage < 0 {
			return nil, apperrors.ErrInvalidRoyaltySum
		}
		housePct, artistPct = req.HousePercentage, req.ArtistPercentage
	}

	reserved, err := s.Lock.Reserve(req.Symbol)
	if err != nil {
		return nil, fmt.Errorf("reserve symbol %s: %w", req.Symbol, err)
	}
	if !reserved {
		return nil, apperrors.ErrSymbolAlreadyTaken
	}
	defer func() {
		if err := s.Lock.Release(req.Symbol); err != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("Failed to release symbol reservation %s: %v", req.Symbol, err))
		}
	}()

	collection := models.Collection{
		Symbol:           req.Symbol,
		Name:             req.Name,
		Artist:           artist,
		Minter:           minter,
		CollectionInfo:   req.CollectionInfo,
		HousePercentage:  housePct,
		ArtistPercentage: artistPct,
		CreatedAt:        s.Now().Unix(),
	}
	if err := s.DB.RegisterPending(collection); err != nil {
		return nil, err
	}

	creationReq := models.CreationRequest{
		CorrelationToken: req.Symbol,
		TemplateID:       cfg.TemplateID,
		Name:             req.Name,
		Symbol:           req.Symbol,
		Artist:           artist,
		Minter:           minter,
		PassPrice:        cfg.PassPrice,
		PassDuration:     cfg.PassDuration,
		GracePeriod:      cfg.GracePeriod,
		SettlementDenom:  cfg.SettlementDenom,
		PaymentAddress:   cfg.PaymentAddress,
		CollectionInfo:   req.CollectionInfo,
		HousePercentage:  housePct,
		ArtistPercentage: artistPct,
		RequestedAt:      collection.CreatedAt,
	}
	if err := s.Kafka.PublishCreationRequest(creationReq); err != nil {
		// The entry stays pending; there is no rollback once registered.
		// Redelivery is an operator action for now.
		s.Logger.Error("FACTORY", fmt.Sprintf("Failed to publish creation request for %s: %v", req.Symbol, err))
		return nil, fmt.Errorf("publish creation request for %s: %w", req.Symbol, err)
	}

	s.Logger.Info("FACTORY", fmt.Sprintf("Collection %s registered pending, creation request published", req.Symbol))
	collection.Status = models.CollectionStatusPending
	return &collection, nil
}

// ResolveCreation applies a provisioner ack to the pending entry matching
// its correlation token. Unknown or already-resolved tokens fail; the ack
// is never matched heuristically against "some entry without an address".
func (s *Service) ResolveCreation(ack models.CreationAck) (*models.Collection, error) {
	if ack.CorrelationToken == "" {
		return nil, apperrors.ErrInvalidInstantiation
	}
	address, err := identity.Validate(ack.Address)
	if err != nil {
		s.Logger.Error("FACTORY", fmt.Sprintf("Creation ack for %s carries invalid address %q", ack.CorrelationToken, ack.Address))
		return nil, apperrors.ErrInvalidInstantiation
	}

	collection, err := s.DB.Resolve(ack.CorrelationToken, address)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("FACTORY", fmt.Sprintf("Collection %s resolved to %s", collection.Symbol, address))
	return collection, nil
}

func (s *Service) UpdateTemplateID(caller, templateID string) error {
	cfg, err := s.DB.GetConfig()
	if err != nil {
		return fmt.Errorf("load factory config: %w", err)
	}
	if caller != cfg.Admin {
		return apperrors.ErrUnauthorized
	}
	if templateID == "" {
		return fmt.Errorf("template id must not be empty")
	}

	if err := s.DB.UpdateTemplateID(templateID); err != nil {
		return fmt.Errorf("update template id: %w", err)
	}
	s.Logger.Info("FACTORY", "Template id updated to "+templateID)
	return nil
}

func (s *Service) UpdateRoyalties(caller string, housePercentage, artistPercentage int) error {
	cfg, err := s.DB.GetConfig()
	if err != nil {
		return fmt.Errorf("load factory config: %w", err)
	}
	if caller != cfg.Admin {
		return apperrors.ErrUnauthorized
	}
	if housePercentage+artistPercentage != 100 || housePercentage < 0 || artistPercentage < 0 {
		return apperrors.ErrInvalidRoyaltySum
	}

	if err := s.DB.UpdateRoyalties(housePercentage, artistPercentage); err != nil {
		return fmt.Errorf("update royalties: %w", err)
	}
	s.Logger.Info("FACTORY", fmt.Sprintf("Royalties updated to house=%d artist=%d", housePercentage, artistPercentage))
	return nil
}

func (s *Service) Config() (*ConfigView, error) {
	cfg, err := s.DB.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("load factory config: %w", err)
	}
	count, err := s.DB.Count()
	if err != nil {
		return nil, fmt.Errorf("count collections: %w", err)
	}

	return &ConfigView{
		Admin:            cfg.Admin,
		TemplateID:       cfg.TemplateID,
		TotalCollections: count,
		HousePercentage:  cfg.HousePercentage,
		ArtistPercentage: cfg.ArtistPercentage,
	}, nil
}

func (s *Service) CollectionBySymbol(symbol string) (*models.Collection, error) {
	return s.DB.GetBySymbol(symbol)
}

func (s *Service) ArtistCollections(artist string, limit int) ([]models.Collection, error) {
	return s.DB.ListByArtist(artist, limit)
}

func (s *Service) AllCollections(limit int) ([]models.Collection, error) {
	return s.DB.List(limit)
}

func (s *Service) IsSymbolAvailable(symbol string) (bool, error) {
	if !validSymbol(symbol) {
		return false, nil
	}
	return s.DB.IsSymbolAvailable(symbol)
}

// validSymbol enforces the registry's symbol format: uppercase ASCII
// letters only, non-empty. No digits, no whitespace.
func validSymbol(symbol string) bool {
	if symbol == "" {
		return false
	}
	for _, c := range symbol {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
