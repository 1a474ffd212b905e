// Package middleware groups the Fiber middlewares used by the serve command:
// request correlation ids (rayid) and API key authentication (auth).
package middleware
