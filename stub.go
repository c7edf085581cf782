// Package mockish provides declarative call stubs and fabricated HTTP responses for unit tests.
package mockish

import (
	"context"
	"fmt"
	"sync"

	"github.com/bool64/ctxd"
	"github.com/stretchr/testify/mock"
)

// Stub is a callable test double with declarative behavior.
//
// Calls are recorded in embedded mock.Mock, so usual assertions are available:
//
//	s := mockish.MustNew(mockish.ReturnValue("hello"))
//	s.Call("foo")
//	s.AssertCalled(t, s.Method(), "foo")
//	s.AssertNumberOfCalls(t, s.Method(), 1)
//
// Please use New or MustNew to create instance.
type Stub struct {
	mock.Mock

	method string
	intent intent
	logger ctxd.Logger

	mu        sync.Mutex
	served    int
	calls     int
	strict    bool
	catchAlls map[int]*mock.Call
}

// New creates a stub configured with options.
//
// At most one of ReturnValue, ReturnOnce, ReturnEach, ReturnCall, ReturnError is allowed,
// otherwise ErrInvalidArgument is returned and nothing is built.
func New(options ...Option) (*Stub, error) {
	c := config{
		method: DefaultMethod,
	}

	for _, option := range options {
		option(&c)
	}

	if len(c.intents) > 1 {
		kinds := make([]string, 0, len(c.intents))
		for _, in := range c.intents {
			kinds = append(kinds, in.kind.String())
		}

		return nil, fmt.Errorf("%w: specify exactly one return intent, received %v", ErrInvalidArgument, kinds)
	}

	s := &Stub{
		method:    c.method,
		logger:    c.logger,
		catchAlls: make(map[int]*mock.Call),
	}

	if len(c.intents) == 1 {
		s.intent = c.intents[0]
	}

	switch {
	case s.method == "":
		return nil, fmt.Errorf("%w: empty method name", ErrInvalidArgument)
	case s.intent.kind == intentCall && s.intent.fn == nil:
		return nil, fmt.Errorf("%w: nil function for ReturnCall", ErrInvalidArgument)
	case s.intent.kind == intentError && s.intent.err == nil:
		return nil, fmt.Errorf("%w: nil error for ReturnError", ErrInvalidArgument)
	}

	if c.test != nil {
		s.Test(c.test)
	}

	for _, setup := range c.setup {
		setup(&s.Mock)
	}

	s.strict = len(s.ExpectedCalls) > 0

	return s, nil
}

// MustNew creates a stub or panics on invalid configuration.
func MustNew(options ...Option) *Stub {
	s, err := New(options...)
	if err != nil {
		panic(err)
	}

	return s
}

// Method returns name under which calls are recorded.
func (s *Stub) Method() string {
	return s.method
}

// On registers an expectation on underlying mock.Mock.
//
// A stub without return intent serves values of matched expectation, with
// first return argument being the value and second one being the error.
func (s *Stub) On(methodName string, arguments ...interface{}) *mock.Call {
	s.mu.Lock()
	s.strict = true

	// Catch-alls of earlier calls would shadow new expectation.
	if s.intent.kind == intentNone && len(s.catchAlls) > 0 {
		s.dropCatchAlls()
	}
	s.mu.Unlock()

	return s.Mock.On(methodName, arguments...)
}

func (s *Stub) dropCatchAlls() {
	skip := make(map[*mock.Call]bool, len(s.catchAlls))
	for _, c := range s.catchAlls {
		skip[c] = true
	}

	expected := make([]*mock.Call, 0, len(s.Mock.ExpectedCalls))

	for _, c := range s.Mock.ExpectedCalls {
		if !skip[c] {
			expected = append(expected, c)
		}
	}

	s.Mock.ExpectedCalls = expected
	s.catchAlls = make(map[int]*mock.Call)
}

// Call invokes the stub with arguments.
func (s *Stub) Call(args ...interface{}) (interface{}, error) {
	rets := s.record(args)

	v, err := s.resolve(args, rets)

	if s.logger != nil {
		s.mu.Lock()
		s.calls++
		n := s.calls
		s.mu.Unlock()

		s.logger.Debug(context.Background(), "stub called",
			"method", s.method,
			"call", n,
			"args", args,
			"intent", s.intent.kind.String(),
			"error", err,
		)
	}

	return v, err
}

// Func returns stub call as a function value.
func (s *Stub) Func() CallFunc {
	return s.Call
}

// record registers call in underlying mock.Mock.
func (s *Stub) record(args []interface{}) mock.Arguments {
	s.mu.Lock()

	if s.intent.kind != intentNone || !s.strict {
		if _, ok := s.catchAlls[len(args)]; !ok {
			anything := make([]interface{}, len(args))
			for i := range anything {
				anything[i] = mock.Anything
			}

			s.catchAlls[len(args)] = s.Mock.On(s.method, anything...).Maybe()
		}
	}

	s.mu.Unlock()

	return s.MethodCalled(s.method, args...)
}

func (s *Stub) resolve(args []interface{}, rets mock.Arguments) (interface{}, error) {
	switch s.intent.kind {
	case intentValue:
		return s.intent.value, nil
	case intentCall:
		return s.intent.fn(args...)
	case intentError:
		return nil, s.intent.err
	case intentOnce:
		if _, ok := s.take(1); !ok {
			return nil, ErrExhausted
		}

		return s.intent.value, nil
	case intentEach:
		i, ok := s.take(len(s.intent.values))
		if !ok {
			return nil, ErrExhausted
		}

		v := s.intent.values[i]
		if err, ok := v.(error); ok {
			return nil, err
		}

		return v, nil
	case intentNone:
	}

	return fromArguments(rets)
}

// take reserves index of next served value if total supply allows it.
func (s *Stub) take(supply int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.served >= supply {
		return 0, false
	}

	i := s.served
	s.served++

	return i, true
}

func fromArguments(rets mock.Arguments) (interface{}, error) {
	var (
		v   interface{}
		err error
	)

	if len(rets) > 0 {
		v = rets.Get(0)
	}

	if len(rets) > 1 {
		err = rets.Error(1)
	}

	return v, err
}
