package passes

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-passes/internal/apperrors"
	"ms-passes/internal/logger"
	"ms-passes/internal/models"
	"ms-passes/internal/payment"
)

type TokenDB interface {
	GetConfig() (*models.CollectionConfig, error)
	NextTokenID() (int64, error)
	CreatePass(pass models.Pass, payout models.Payout) error
	GetPass(tokenID string) (*models.Pass, error)
	PassExists(tokenID string) (bool, error)
	RenewPass(pass models.Pass, payout models.Payout) error
	RemovePass(tokenID string) error
	GetPassByOwner(owner string) (*models.Pass, error)
	LiveCount() (int, error)
}

type PayoutLedger interface {
	PayoutsByToken(tokenID string) ([]models.Payout, error)
	ArtistTotal() (int64, error)
}

// ValidityCache is an optional read-through cache for validity queries.
type ValidityCache interface {
	GetValidity(tokenID string) (*Validity, bool)
	SetValidity(tokenID string, v Validity)
	Invalidate(tokenID string)
}

type Service struct {
	DB     TokenDB
	Ledger PayoutLedger
	Cache  ValidityCache
	Logger *logger.Logger

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewService(db TokenDB, ledger PayoutLedger, cache ValidityCache, log *logger.Logger) *Service {
	return &Service{DB: db, Ledger: ledger, Cache: cache, Logger: log, Now: time.Now}
}

type Validity struct {
	TokenID          string `json:"token_id"`
	Status           Status `json:"status"`
	IsActive         bool   `json:"is_active"`
	ExpiresAt        int64  `json:"expires_at"`
	GracePeriodEnd   int64  `json:"grace_period_end"`
	SecondsRemaining int64  `json:"seconds_remaining"`
	TimesRenewed     int    `json:"times_renewed"`
}

type ArtistInfo struct {
	Artist           string `json:"artist"`
	Symbol           string `json:"symbol"`
	ArtistPercentage int    `json:"artist_percentage"`
	TotalEarned      int64  `json:"total_earned"`
	LivePasses       int    `json:"live_passes"`
}

// MintPass issues a new pass to owner against the attached funds. The
// token id comes off the monotonic counter and is never reused, even after
// a burn.
func (s *Service) MintPass(owner string, funds []models.Coin) (*models.Pass, error) {
	cfg, err := s.DB.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("load collection config: %w", err)
	}

	gross, err := payment.Validate(funds, cfg.SettlementDenom, cfg.PassPrice)
	if err != nil {
		return nil, err
	}

	next, err := s.DB.NextTokenID()
	if err != nil {
		return nil, err
	}
	tokenID := fmt.Sprintf("%s-%d", strings.ToLower(cfg.Symbol), next)

	// The counter guarantees uniqueness; this guards against a reseeded
	// counter row colliding with surviving passes.
	exists, err := s.DB.PassExists(tokenID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrTokenExists
	}

	now := s.Now().Unix()
	pass := models.Pass{
		TokenID:        tokenID,
		Owner:          owner,
		ExpiresAt:      now + cfg.PassDuration,
		GracePeriodEnd: now + cfg.PassDuration + cfg.GracePeriod,
		IsActive:       true,
		TimesRenewed:   0,
		MetadataURI:    cfg.CollectionInfo,
		IssuedAt:       now,
	}
	payout := s.newPayout(cfg, tokenID, "mint", gross)
	if err := s.DB.CreatePass(pass, payout); err != nil {
		return nil, fmt.Errorf("store pass %s: %w", tokenID, err)
	}

	s.logSplit(cfg, tokenID, payout)
	s.Logger.Info("PASS", fmt.Sprintf("Minted %s for %s, expires at %d", tokenID, owner, pass.ExpiresAt))
	return &pass, nil
}

// RenewPass resets the validity window to now + duration. Renewing before
// expiry forfeits whatever was left of the old window; the new window is
// never stacked on the previous one.
func (s *Service) RenewPass(caller, tokenID string, funds []models.Coin) (*models.Pass, error) {
	cfg, err := s.DB.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("load collection config: %w", err)
	}

	pass, err := s.DB.GetPass(tokenID)
	if err != nil {
		return nil, err
	}
	if caller != pass.Owner && caller != cfg.Minter {
		return nil, apperrors.ErrUnauthorized
	}

	gross, err := payment.Validate(funds, cfg.SettlementDenom, cfg.PassPrice)
	if err != nil {
		return nil, err
	}

	now := s.Now().Unix()
	pass.ExpiresAt = now + cfg.PassDuration
	pass.GracePeriodEnd = pass.ExpiresAt + cfg.GracePeriod
	pass.IsActive = true
	pass.TimesRenewed++

	payout := s.newPayout(cfg, tokenID, "renew", gross)
	if err := s.DB.RenewPass(*pass, payout); err != nil {
		return nil, fmt.Errorf("update pass %s: %w", tokenID, err)
	}
	if s.Cache != nil {
		s.Cache.Invalidate(tokenID)
	}

	s.logSplit(cfg, tokenID, payout)
	s.Logger.Info("PASS", fmt.Sprintf("Renewed %s (x%d), new expiry %d", tokenID, pass.TimesRenewed, pass.ExpiresAt))
	return pass, nil
}

// BurnExpiredPass removes a pass once it is past its grace period. Only
// the owner or the collection minter may burn.
func (s *Service) BurnExpiredPass(caller, tokenID string) error {
	cfg, err := s.DB.GetConfig()
	if err != nil {
		return fmt.Errorf("load collection config: %w", err)
	}

	pass, err := s.DB.GetPass(tokenID)
	if err != nil {
		return err
	}
	if caller != pass.Owner && caller != cfg.Minter {
		return apperrors.ErrUnauthorized
	}
	if StatusAt(s.Now().Unix(), pass.ExpiresAt, pass.GracePeriodEnd) != StatusExpired {
		return apperrors.ErrPassNotExpired
	}

	if err := s.DB.RemovePass(tokenID); err != nil {
		return fmt.Errorf("remove pass %s: %w", tokenID, err)
	}
	if s.Cache != nil {
		s.Cache.Invalidate(tokenID)
	}

	s.Logger.Info("PASS", fmt.Sprintf("Burned expired pass %s", tokenID))
	return nil
}

// TransferPass always fails: passes are soulbound.
func (s *Service) TransferPass(caller, tokenID, recipient string) error {
	return apperrors.ErrSoulbound
}

// ApprovePass always fails: passes are soulbound, approvals are pointless.
func (s *Service) ApprovePass(caller, tokenID, operator string) error {
	return apperrors.ErrSoulbound
}

func (s *Service) Validity(tokenID string) (*Validity, error) {
	if s.Cache != nil {
		if v, ok := s.Cache.GetValidity(tokenID); ok {
			return v, nil
		}
	}

	pass, err := s.DB.GetPass(tokenID)
	if err != nil {
		return nil, err
	}

	now := s.Now().Unix()
	status := StatusAt(now, pass.ExpiresAt, pass.GracePeriodEnd)
	remaining := pass.GracePeriodEnd - now
	if remaining < 0 {
		remaining = 0
	}

	v := Validity{
		TokenID:          tokenID,
		Status:           status,
		IsActive:         pass.IsActive && status != StatusExpired,
		ExpiresAt:        pass.ExpiresAt,
		GracePeriodEnd:   pass.GracePeriodEnd,
		SecondsRemaining: remaining,
		TimesRenewed:     pass.TimesRenewed,
	}
	if s.Cache != nil {
		s.Cache.SetValidity(tokenID, v)
	}
	return &v, nil
}

func (s *Service) UserPass(owner string) (*models.Pass, error) {
	return s.DB.GetPassByOwner(owner)
}

func (s *Service) GetPass(tokenID string) (*models.Pass, error) {
	return s.DB.GetPass(tokenID)
}

func (s *Service) Config() (*models.CollectionConfig, error) {
	return s.DB.GetConfig()
}

// PassPayouts returns the split history for one pass, oldest first.
func (s *Service) PassPayouts(tokenID string) ([]models.Payout, error) {
	if _, err := s.DB.GetPass(tokenID); err != nil {
		return nil, err
	}
	return s.Ledger.PayoutsByToken(tokenID)
}

func (s *Service) ArtistInfo() (*ArtistInfo, error) {
	cfg, err := s.DB.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("load collection config: %w", err)
	}
	total, err := s.Ledger.ArtistTotal()
	if err != nil {
		return nil, fmt.Errorf("sum artist payouts: %w", err)
	}
	live, err := s.DB.LiveCount()
	if err != nil {
		return nil, fmt.Errorf("count live passes: %w", err)
	}

	return &ArtistInfo{
		Artist:           cfg.Artist,
		Symbol:           cfg.Symbol,
		ArtistPercentage: cfg.ArtistPercentage,
		TotalEarned:      total,
		LivePasses:       live,
	}, nil
}

// newPayout computes the split for one settlement. The db layer persists
// it in the same transaction as the pass write it belongs to.
func (s *Service) newPayout(cfg *models.CollectionConfig, tokenID, action string, gross int64) models.Payout {
	house, artist := payment.Split(gross, cfg.HousePercentage)
	return models.Payout{
		ID:            uuid.New().String(),
		Symbol:        cfg.Symbol,
		TokenID:       tokenID,
		Action:        action,
		Denom:         cfg.SettlementDenom,
		Gross:         gross,
		HouseAmount:   house,
		ArtistAmount:  artist,
		HouseAddress:  cfg.PaymentAddress,
		ArtistAddress: cfg.Artist,
		CreatedAt:     s.Now(),
	}
}

func (s *Service) logSplit(cfg *models.CollectionConfig, tokenID string, payout models.Payout) {
	s.Logger.Info("PAYMENT", fmt.Sprintf("Split %d %s for %s: house %d, artist %d",
		payout.Gross, cfg.SettlementDenom, tokenID, payout.HouseAmount, payout.ArtistAmount))
}
