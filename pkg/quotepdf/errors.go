package quotepdf

import "errors"

var (
	ErrMissingQuoteNumber = errors.New("quote number is required")
	ErrMissingCustomer    = errors.New("customer name is required")
	ErrRenderFailed       = errors.New("failed to render quote PDF")
	ErrQRCodeFailed       = errors.New("failed to generate QR code")
)
