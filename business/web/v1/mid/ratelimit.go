package mid

import (
	"context"
	"errors"
	"net/http"

	v1 "github.com/pohchain/pohchain/business/web/v1"
	"github.com/pohchain/pohchain/foundation/web"
	"golang.org/x/time/rate"
)

// RateLimit rejects requests once the configured requests per minute is
// exceeded. A single limiter covers the whole mux; per-client limiting is
// not needed at this node's scale.
func RateLimit(requestsPerMinute int) web.Middleware {
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if !limiter.Allow() {
				return v1.NewRequestError(errors.New("too many requests"), http.StatusTooManyRequests)
			}

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
