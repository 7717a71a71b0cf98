// Package middleware contains HTTP middleware components.
package middleware

import (
	"context"
	"net/http"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

type contextKey string

const (
	// RequestIDKey is the context key for request ID.
	RequestIDKey contextKey = "request_id"
	// ClientIPKey is the context key for client IP.
	ClientIPKey contextKey = "client_ip"
)

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetClientIP retrieves the client IP from context.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ClientIPKey).(string); ok {
		return ip
	}
	return ""
}

// Chain is an ordered list of middlewares. The first one is outermost.
type Chain struct {
	middlewares []Middleware
}

// New creates a new middleware chain with the given middlewares.
func New(middlewares ...Middleware) *Chain {
	return &Chain{middlewares: append([]Middleware(nil), middlewares...)}
}

// Then applies the chain to h. A nil h means http.DefaultServeMux.
func (c *Chain) Then(h http.Handler) http.Handler {
	if h == nil {
		h = http.DefaultServeMux
	}
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	return h
}

// ThenFunc applies the chain to fn.
func (c *Chain) ThenFunc(fn http.HandlerFunc) http.Handler {
	return c.Then(fn)
}

// Append returns a new chain; c is left unchanged.
func (c *Chain) Append(middlewares ...Middleware) *Chain {
	next := make([]Middleware, 0, len(c.middlewares)+len(middlewares))
	next = append(next, c.middlewares...)
	next = append(next, middlewares...)
	return &Chain{middlewares: next}
}
