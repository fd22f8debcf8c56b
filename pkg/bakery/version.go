// Package bakery is the public entry point to the bakery store: build
// metadata and a factory that opens the configured backend.
package bakery

// Version is the current release of the bakery service.
const Version = "0.1.0"
