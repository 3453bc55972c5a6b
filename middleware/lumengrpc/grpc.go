// Package lumengrpc instruments gRPC servers and clients with OpenTelemetry
// via stats handlers.
//
// Server:
//
//	server := grpc.NewServer(
//	    grpc.StatsHandler(lumengrpc.ServerHandler()),
//	)
//
// Client:
//
//	conn, err := grpc.NewClient(addr,
//	    grpc.WithStatsHandler(lumengrpc.ClientHandler()),
//	)
package lumengrpc

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc/stats"
)

// ServerHandler returns a stats.Handler for gRPC server instrumentation.
// Use with the grpc.StatsHandler server option.
func ServerHandler(opts ...Option) stats.Handler {
	return otelgrpc.NewServerHandler(collect(opts)...)
}

// ClientHandler returns a stats.Handler for gRPC client instrumentation.
// Use with the grpc.WithStatsHandler dial option.
func ClientHandler(opts ...Option) stats.Handler {
	return otelgrpc.NewClientHandler(collect(opts)...)
}

func collect(opts []Option) []otelgrpc.Option {
	o := &options{}
	for _, opt := range opts {
		opt.apply(o)
	}
	return o.otelOpts
}

type options struct {
	otelOpts []otelgrpc.Option
}

// Option configures instrumentation.
type Option interface {
	apply(*options)
}

type rawOption []otelgrpc.Option

func (r rawOption) apply(o *options) { o.otelOpts = append(o.otelOpts, r...) }

// WithOTelOptions passes raw otelgrpc options through, an escape hatch for
// features not wrapped here.
func WithOTelOptions(opts ...otelgrpc.Option) Option { return rawOption(opts) }
