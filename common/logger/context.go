package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Fields flow through context enrichment so feed plumbing
// (item keys, stream subscribers) shows up in every log statement without
// each call site repeating them.
type LogFields struct {
	ItemKey      *string // composite (type,id) feed item key
	ItemType     *string // feed item type tag
	Seq          *int64  // insertion sequence assigned at ingest
	SubscriberID *string // stream broker subscriber
	Component    string  // component name (OTel style, e.g. "feed.stream.broker")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.ItemKey != nil {
		result.ItemKey = next.ItemKey
	}
	if next.ItemType != nil {
		result.ItemType = next.ItemType
	}
	if next.Seq != nil {
		result.Seq = next.Seq
	}
	if next.SubscriberID != nil {
		result.SubscriberID = next.SubscriberID
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline.
func Ptr[T any](v T) *T {
	return &v
}
