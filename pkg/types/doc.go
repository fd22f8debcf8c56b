// Package types defines the Store interface, the bakery entity types, and
// the standard errors shared by the storage backends and the HTTP layer.
package types
