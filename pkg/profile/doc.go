// Package profile exposes the signed-in account's own data and lets the
// owner change their username or password.
//
// Every operation takes the account ID from the session; callers never pass
// another account's ID from the request.
package profile
