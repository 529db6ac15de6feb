package mocks

import (
	"context"
	"meetflow/infras/otel"
)

type otelImpl struct {
	traced *Traced
}

// NewScope implements otel.Otel.
func (o *otelImpl) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, &scopeImpl{traced: o.traced}
}

// Shutdown implements otel.Otel.
func (o *otelImpl) Shutdown(_ context.Context) error {
	return nil
}

// NewOtel returns a tracer that records nothing, for unit tests.
func NewOtel() otel.Otel {
	return &otelImpl{}
}

// NewTracingOtel returns a tracer whose scopes keep every traced error.
func NewTracingOtel() (otel.Otel, *Traced) {
	traced := &Traced{}

	return &otelImpl{traced: traced}, traced
}
