package errs

import "errors"

// Domain-specific sentinel errors surfaced across usecase layers.
// Handlers translate these into stable HTTP error kinds.
var (
	// Access errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	// Reservation errors
	ErrSlotConflict = errors.New("slot conflict")
	ErrInvalidSlot  = errors.New("invalid slot")
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidCabin = errors.New("invalid cabin")

	// Payment errors
	ErrPaymentSessionInvalid = errors.New("payment session invalid")
	ErrUpstreamUnavailable   = errors.New("upstream unavailable")

	// Upload errors
	ErrUploadSessionNotFound = errors.New("upload session not found")
	ErrIncompleteUpload      = errors.New("incomplete upload")

	// Auth errors
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrOAuthAccount       = errors.New("account registered via oauth provider")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
