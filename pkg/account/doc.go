// Package account defines the Account record and the Repository that stores
// it, with PostgreSQL, MongoDB, JSON-file and in-memory implementations.
//
// Verification and reset tokens live on the account row itself. Only the
// Consume methods clear a token, and they do so in the same step that marks
// the account verified or replaces its password hash.
package account
