package apperrors

import "errors"

// Error taxonomy for the factory and collection services. Services return
// these sentinels (usually wrapped with fmt.Errorf and %w) and the HTTP
// layer maps them to status codes with errors.Is.

// Authorization
var ErrUnauthorized = errors.New("unauthorized")

// Validation
var (
	ErrInvalidSymbolFormat = errors.New("invalid symbol format: must be uppercase letters with no spaces")
	ErrInvalidRoyaltySum   = errors.New("house and artist percentages must sum to 100")
	ErrInvalidIdentity     = errors.New("invalid address format")
)

// Conflict
var (
	ErrSymbolAlreadyTaken = errors.New("symbol is already taken")
	ErrTokenExists        = errors.New("token id already exists")
)

// NotFound
var (
	ErrCollectionNotFound      = errors.New("collection not found")
	ErrPendingCreationNotFound = errors.New("no pending creation for correlation token")
	ErrTokenNotFound           = errors.New("token not found")
)

// Payment
var (
	ErrPaymentMissing      = errors.New("no payment found in settlement denom")
	ErrPaymentInsufficient = errors.New("payment amount below pass price")
)

// State
var (
	ErrPassNotExpired       = errors.New("pass is not expired")
	ErrMaxSupplyReached     = errors.New("maximum supply reached")
	ErrSoulbound            = errors.New("pass is soulbound and cannot be transferred")
	ErrInvalidInstantiation = errors.New("invalid collection instantiation ack")
)
