package mocks

import (
	"meetflow/infras/otel"
	"sync"
)

// Traced collects the errors scopes were asked to record.
type Traced struct {
	mu     sync.Mutex
	errors []error
}

func (t *Traced) add(err error) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.errors = append(t.errors, err)
}

func (t *Traced) Errors() []error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]error(nil), t.errors...)
}

type scopeImpl struct {
	traced *Traced
}

// AddEvent implements otel.Scope.
func (s *scopeImpl) AddEvent(_ string) {

}

// End implements otel.Scope.
func (s *scopeImpl) End() {

}

// SetAttribute implements otel.Scope.
func (s *scopeImpl) SetAttribute(_ string, _ any) {

}

// SetAttributes implements otel.Scope.
func (s *scopeImpl) SetAttributes(_ map[string]any) {

}

// TraceError implements otel.Scope.
func (s *scopeImpl) TraceError(err error) {
	s.traced.add(err)
}

// TraceIfError implements otel.Scope.
func (s *scopeImpl) TraceIfError(err error) {
	if err != nil {
		s.traced.add(err)
	}
}

func NewScope() otel.Scope {
	return &scopeImpl{}
}
