// Package login authenticates accounts by email and password and issues
// the session token carried in the "token" cookie.
//
// Passwords are hashed with bcrypt by default; argon2id is available and
// hashes of either kind verify regardless of the configured algorithm.
// PasswordPolicy holds the rules shared by signup and password reset.
package login
