package middleware

import (
	"net/http"
	"slices"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes mws outermost first: Chain(a, b)(h) is a(b(h)). Nil
// entries are skipped so optional stages can be left out in place.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for _, mw := range slices.Backward(mws) {
			if mw != nil {
				h = mw(h)
			}
		}
		return h
	}
}
