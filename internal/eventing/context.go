package eventing

import "context"

type contextKey string

const (
	contextKeyEnvelope contextKey = "eventing.envelope"
	contextKeyCorr     contextKey = "eventing.correlation_id"
)

// WithEnvelope attaches envelope metadata to context.
func WithEnvelope(ctx context.Context, env Envelope) context.Context {
	return context.WithValue(ctx, contextKeyEnvelope, env)
}

// EnvelopeFromContext returns envelope metadata if available.
func EnvelopeFromContext(ctx context.Context) (Envelope, bool) {
	env, ok := ctx.Value(contextKeyEnvelope).(Envelope)
	return env, ok
}

// WithCorrelationID sets correlation id in context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, contextKeyCorr, correlationID)
}

// MetaFromContext builds envelope metadata from context values.
func MetaFromContext(ctx context.Context) Meta {
	meta := Meta{}
	if correlationID, ok := ctx.Value(contextKeyCorr).(string); ok {
		meta.CorrelationID = correlationID
	}
	return meta
}
