package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"timeclock.service/pkg/telemetry"
)

// Setup configures the global zerolog logger.
func Setup(isLocalDev bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if isLocalDev {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// EnrichContextWithLogger adds a zerolog logger to the context carrying the
// trace ids and, when known, the employee the work is for.
func EnrichContextWithLogger(ctx context.Context) context.Context {
	lc := log.With()
	enriched := false

	if sCtx := trace.SpanFromContext(ctx).SpanContext(); sCtx.HasTraceID() {
		lc = lc.Str("trace_id", sCtx.TraceID().String()).
			Str("span_id", sCtx.SpanID().String())
		enriched = true
	}
	if e, ok := telemetry.EmployeeFromContext(ctx); ok {
		lc = lc.Int64("shop_id", e.ShopID).Int64("user_id", e.UserID)
		enriched = true
	}
	if !enriched {
		return ctx
	}

	l := lc.Logger()
	return l.WithContext(ctx)
}
