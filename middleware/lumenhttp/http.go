// Package lumenhttp instruments HTTP servers and clients with OpenTelemetry
// spans and structured request logs.
//
// Server side:
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("/api", handler)
//	h := lumenhttp.Handler(mux, "api")
//	h = lumenhttp.LogRequests(h, guard.Logger())
//	http.ListenAndServe(":8080", h)
//
// Client side:
//
//	client := lumenhttp.Client()
//	resp, err := client.Get("https://api.example.com")
package lumenhttp

import (
	"net/http"
	"time"

	"github.com/lumenlabs/lumen"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Filter decides whether a request is instrumented.
type Filter = otelhttp.Filter

// Handler wraps an http.Handler with OpenTelemetry instrumentation. Each
// incoming request gets a span carrying method, route, and status code.
func Handler(handler http.Handler, operation string, opts ...Option) http.Handler {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(o)
	}

	otelOpts := []otelhttp.Option{}
	if o.filter != nil {
		otelOpts = append(otelOpts, otelhttp.WithFilter(o.filter))
	}

	return otelhttp.NewHandler(handler, operation, otelOpts...)
}

// Client returns an http.Client whose requests create client spans linked to
// the current trace context.
func Client(opts ...Option) *http.Client {
	return &http.Client{Transport: Transport(nil, opts...)}
}

// Transport wraps an http.RoundTripper with OpenTelemetry instrumentation.
// A nil base uses http.DefaultTransport.
func Transport(base http.RoundTripper, opts ...Option) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(base)
}

// LogRequests emits one structured log line per request through the given
// logger: method, path, status, duration, and response size. Trace IDs ride
// along from the request context when Handler wraps outside LogRequests.
func LogRequests(next http.Handler, logger lumen.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info(r.Context(), "http request",
			lumen.String("method", r.Method),
			lumen.String("path", r.URL.Path),
			lumen.Int("status", rec.status),
			lumen.F("duration", time.Since(start)),
			lumen.Int64("bytes", rec.written),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.written += int64(n)
	return n, err
}

// --- Options ---

type options struct {
	filter Filter
}

func defaultOptions() *options {
	return &options{}
}

// Option configures instrumentation.
type Option interface {
	apply(*options)
}

type filterOption Filter

func (f filterOption) apply(o *options) { o.filter = Filter(f) }

// WithFilter skips instrumentation for requests the filter rejects.
func WithFilter(f Filter) Option { return filterOption(f) }
