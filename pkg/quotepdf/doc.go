// Package quotepdf renders customer-facing quote documents from a cost
// breakdown. The output is a single A4 page with branded header, line
// item table, totals, and an optional QR code linking to the hosted
// quote.
package quotepdf
