package mockish

import "context"

// Result is an outcome of asynchronous stub call.
type Result struct {
	Value interface{}
	Err   error
}

// AsyncStub is a Stub with asynchronous calling convention.
//
// Calls are recorded synchronously and resolved immediately, no goroutines are started.
type AsyncStub struct {
	*Stub
}

// NewAsync creates asynchronous stub, see New for options.
func NewAsync(options ...Option) (*AsyncStub, error) {
	s, err := New(options...)
	if err != nil {
		return nil, err
	}

	return &AsyncStub{Stub: s}, nil
}

// MustNewAsync creates asynchronous stub or panics on invalid configuration.
func MustNewAsync(options ...Option) *AsyncStub {
	s, err := NewAsync(options...)
	if err != nil {
		panic(err)
	}

	return s
}

// Call invokes the stub and returns a channel that already holds the result.
func (s *AsyncStub) Call(args ...interface{}) <-chan Result {
	res := make(chan Result, 1)

	v, err := s.Stub.Call(args...)
	res <- Result{Value: v, Err: err}

	close(res)

	return res
}

// Await invokes the stub and waits for the result.
//
// Done context fails the call without recording it.
func (s *AsyncStub) Await(ctx context.Context, args ...interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := <-s.Call(args...)

	return r.Value, r.Err
}
