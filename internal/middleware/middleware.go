package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/akolanti/PdfQA/internal/adapter/utils"
	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/handlers"
	"github.com/akolanti/PdfQA/internal/metrics"
	"github.com/akolanti/PdfQA/pkg/logger_i"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type authSettings struct {
	token  string
	bypass bool
}

var auth = authSettings{bypass: true}

// Init applies the server settings: the bearer token, whether auth is
// bypassed, and the per-IP rate limit.
func Init(settings config.ServerSettings) {
	auth = authSettings{token: settings.AuthToken, bypass: settings.NoAuthBypass}
	if settings.RateLimit > 0 && settings.Burst > 0 {
		limiterInstance = NewIPRateLimiter(rate.Limit(settings.RateLimit), settings.Burst)
	}
}

var AskHandler = Wrap(handlers.AskHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)
var HealthHandler = Public(handlers.HealthHandler)

// Wrap runs the full chain: trace, rate limit, auth, then metrics around next.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return chain(next, true)
}

// Public skips auth and rate limiting, for probes.
func Public(next http.HandlerFunc) http.HandlerFunc {
	return chain(next, false)
}

func chain(next http.HandlerFunc, guarded bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec}, guarded)

		if !re.badRequest.isBadRequest {
			next(rec, re.req)
		}

		path := utils.GetRoutePattern(r)
		metrics.HttpRequestsTotal.WithLabelValues(path, strconv.Itoa(rec.Status)).Inc() //metrics
		metrics.CaptureHttpLatency(path, time.Since(start))
	}
}

func processRequest(re requestResponseStruct, guarded bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re
	}
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)
	if !guarded {
		return re
	}

	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re //stop here if rate limit fails
	}
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		handleBadRequest(re)
		return re //stop if auth fails
	}
	return re
}
