// Package archive stores rendered quote PDFs. Production deployments
// use S3Storage (Amazon S3 or any S3-compatible endpoint); LocalStorage
// keeps documents on disk for development.
package archive
