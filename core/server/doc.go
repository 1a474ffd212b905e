// Package server holds the HTTP server configuration.
//
// The serve command starts the server itself; this package only defines the
// configuration structure embedded by core/config.
package server
