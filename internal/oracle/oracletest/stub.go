// Package oracletest provides a scripted oracle stub for tests.
package oracletest

import (
	"context"
	stderrors "errors"

	"scriptsmith/internal/oracle"
)

// Stub replays a fixed sequence of responses and records every request.
// Once the script is exhausted the last response repeats, so stubs that
// always return the same text only need one entry.
type Stub struct {
	Responses []string
	Err       error

	Requests []*oracle.Request
	calls    int
}

// New creates a stub that replays the given responses in order.
func New(responses ...string) *Stub {
	return &Stub{Responses: responses}
}

// Failing creates a stub whose every call fails with err.
func Failing(err error) *Stub {
	return &Stub{Err: err}
}

// Name implements oracle.Client.
func (s *Stub) Name() string { return "stub" }

// Calls returns how many times Generate was invoked.
func (s *Stub) Calls() int { return s.calls }

// Generate implements oracle.Client.
func (s *Stub) Generate(_ context.Context, req *oracle.Request) (*oracle.Response, error) {
	s.calls++
	s.Requests = append(s.Requests, req)

	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Responses) == 0 {
		return nil, stderrors.New("oracletest: no scripted responses")
	}

	idx := s.calls - 1
	if idx >= len(s.Responses) {
		idx = len(s.Responses) - 1
	}

	return &oracle.Response{
		Content: s.Responses[idx],
		Model:   "stub-model",
	}, nil
}
