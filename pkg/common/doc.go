// Package common holds the HTTP helpers shared by the API handlers: JSON
// request decoding with validation and uniform error rendering.
package common
