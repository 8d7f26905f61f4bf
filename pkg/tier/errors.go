package tier

import "errors"

var (
	ErrUnknownTier             = errors.New("unknown subscription tier")
	ErrInvalidCatalog          = errors.New("invalid tier catalog configuration")
	ErrFailedToLoadCatalog     = errors.New("failed to load tier catalog")
	ErrNoPriceForTier          = errors.New("tier has no price for the requested billing cycle")
	ErrUnsupportedCurrencyCode = errors.New("unsupported ISO 4217 currency code")
)
