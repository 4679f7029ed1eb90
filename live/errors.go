package live

import "errors"

// Rejected-operation outcomes. Handlers match these with errors.Is and map
// them to user-facing responses; they are never coerced or swallowed.
var (
	ErrInvalidProductCount = errors.New("preloaded products must contain between 1 and 5 entries")
	ErrDuplicateProducts   = errors.New("preloaded products must be distinct")
	ErrInvalidProductID    = errors.New("product id must not be empty")
	ErrSessionNotLive      = errors.New("session is not live")
	ErrProductNotPreloaded = errors.New("product is not in the preloaded set")
	ErrOfferAlreadyActive  = errors.New("a flash offer is already active")
	ErrInvalidOffer        = errors.New("flash offer value and duration must be positive")
	ErrNoLiveSession       = errors.New("seller has no live session")
)
