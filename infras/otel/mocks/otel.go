// Package mocks provides an in-process Otel for tests. Spans are discarded;
// traced errors are counted so tests can assert that a failure was recorded.
package mocks

import (
	"context"
	"sync/atomic"

	"dinebook/infras/otel"
)

type Otel struct {
	errors atomic.Int64
}

func NewOtel() *Otel {
	return &Otel{}
}

func (o *Otel) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, &scope{parent: o}
}

func (o *Otel) Shutdown(_ context.Context) error {
	return nil
}

// TracedErrors returns how many errors were recorded on scopes.
func (o *Otel) TracedErrors() int64 {
	return o.errors.Load()
}

type scope struct {
	parent *Otel
}

func (s *scope) End() {}

func (s *scope) TraceError(_ error) {
	s.parent.errors.Add(1)
}

func (s *scope) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}

func (s *scope) AddEvent(_ string) {}

func (s *scope) SetAttribute(_ string, _ any) {}

func (s *scope) SetAttributes(_ map[string]any) {}
