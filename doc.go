// Package lumen wires console output, rotating file output, and live export
// to an OpenTelemetry collector behind a single configuration record and one
// initializer call.
//
// Lumen selects and composes sinks; it does not implement formatting,
// rotation, or export itself. Zap encoders format, lumberjack rotates, and
// the OTLP exporters ship data to the collector.
//
// # Guarantees
//
//   - While the returned Guard is alive, buffered output is eventually
//     delivered; Close(ctx) flushes everything before it returns.
//   - All Logger and Tracer APIs are safe for concurrent use.
//   - Collector failures degrade to console output with a Warning; they
//     never crash application logic.
//
// # Basic usage
//
//	guard, warnings, err := lumen.Init(lumen.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range warnings {
//	    log.Printf("lumen: %v", w)
//	}
//	defer guard.Close(context.Background())
//
//	guard.Logger().Info(ctx, "server started", lumen.Int("port", 8080))
//
// Console and file output together:
//
//	cfg := lumen.Default().
//	    WithMode(lumen.ModeConsoleAndFile).
//	    WithLogDir("./logs")
//
// Live export to a collector (console output stays on):
//
//	cfg := lumen.Default().WithCollector("localhost:4317")
//
// Filter expressions select verbosity per named logger: a default level
// first, component overrides after.
//
//	cfg := lumen.Default().WithFilter("info,router=debug,store=warn")
//	router := guard.Logger().Named("router") // debug and up
package lumen
