// Package email sends transactional billing emails through Postmark in
// production, or writes them to disk via DevSender for local work.
package email
