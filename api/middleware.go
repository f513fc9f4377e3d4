package api

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	raven "github.com/getsentry/raven-go"
	"github.com/gorilla/handlers"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// General traffic ceiling across all endpoints. Generous; the per-route
// throttles are the real abuse guards.
const (
	globalThrottlePeriod = time.Minute
	globalThrottleLimit  = 60
)

func middleware(mux *http.ServeMux) http.Handler {
	originsOk := handlers.AllowedOrigins([]string{os.Getenv("ALLOWED_ORIGINS")})

	return handlers.LoggingHandler(os.Stdout,
		recoveryHandler(
			throttleHandler(globalThrottlePeriod, globalThrottleLimit,
				handlers.CORS(originsOk)(mux)),
		),
	)
}

// throttleHandler applies a fixed-window limit per client address,
// trusting one forwarded-for hop. Skipped under `go test` and in local
// development so iteration isn't hampered; production always enforces.
func throttleHandler(period time.Duration, limit int64, f http.Handler) http.Handler {
	if flag.Lookup("test.v") != nil {
		// Don't throttle tests
		return f
	}
	if os.Getenv("APP_ENV") == "development" {
		return f
	}
	return newThrottle(period, limit, f)
}

// newThrottle builds the limiter middleware unconditionally. Requests
// over the limit are rejected with 429 and rate-limit headers before any
// handler logic runs.
func newThrottle(period time.Duration, limit int64, f http.Handler) http.Handler {
	rateLimitStore := memory.NewStore()
	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}
	rateLimiter := stdlib.NewMiddleware(limiter.New(rateLimitStore, rate,
		limiter.WithTrustForwardHeader(true)))
	return rateLimiter.Handler(f)
}

func recoveryHandler(f http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		defer func() {
			if err, ok := recover().(error); ok {
				rvalStr := fmt.Sprint(err)
				packet := raven.NewPacket(rvalStr, raven.NewException(err.(error), raven.GetOrNewStacktrace(err.(error), 2, 3, nil)), raven.NewHttp(r))
				raven.Capture(packet, nil)
				w.WriteHeader(http.StatusInternalServerError)
			}
		}()

		f.ServeHTTP(w, r)
	})
}
