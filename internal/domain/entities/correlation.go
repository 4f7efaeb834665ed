package entities

import "context"

type correlationKey struct{}

// Correlation identifies the resolution a log line or metric belongs to.
type Correlation struct {
	ScanID      string
	Pipeline    string
	Environment string
}

// WithCorrelation returns a copy of ctx carrying c.
func WithCorrelation(ctx context.Context, c Correlation) context.Context {
	return context.WithValue(ctx, correlationKey{}, c)
}

// CorrelationFrom returns the correlation attached to ctx, if any.
func CorrelationFrom(ctx context.Context) Correlation {
	if c, ok := ctx.Value(correlationKey{}).(Correlation); ok {
		return c
	}
	return Correlation{}
}

// Fields returns the non-empty correlation values keyed by log field name.
func (c Correlation) Fields() map[string]any {
	fields := make(map[string]any, 3)
	if c.ScanID != "" {
		fields["scan_id"] = c.ScanID
	}
	if c.Pipeline != "" {
		fields["pipeline"] = c.Pipeline
	}
	if c.Environment != "" {
		fields["environment"] = c.Environment
	}
	return fields
}
