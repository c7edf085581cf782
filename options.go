package mockish

import (
	"github.com/bool64/ctxd"
	"github.com/stretchr/testify/mock"
)

// DefaultMethod is a method name used to record stub calls.
const DefaultMethod = "Call"

// CallFunc computes stub result from call arguments.
type CallFunc func(args ...interface{}) (interface{}, error)

// Option configures stub construction.
type Option func(c *config)

type intentKind int

const (
	intentNone intentKind = iota
	intentValue
	intentOnce
	intentEach
	intentCall
	intentError
)

func (k intentKind) String() string {
	switch k {
	case intentValue:
		return "ReturnValue"
	case intentOnce:
		return "ReturnOnce"
	case intentEach:
		return "ReturnEach"
	case intentCall:
		return "ReturnCall"
	case intentError:
		return "ReturnError"
	case intentNone:
	}

	return "none"
}

// intent describes what happens when stub is called.
type intent struct {
	kind   intentKind
	value  interface{}
	values []interface{}
	fn     CallFunc
	err    error
}

type config struct {
	intents []intent
	method  string
	test    mock.TestingT
	logger  ctxd.Logger
	setup   []func(m *mock.Mock)
}

// ReturnValue makes every call return v.
func ReturnValue(v interface{}) Option {
	return func(c *config) {
		c.intents = append(c.intents, intent{kind: intentValue, value: v})
	}
}

// ReturnOnce makes first call return v, following calls fail with ErrExhausted.
func ReturnOnce(v interface{}) Option {
	return func(c *config) {
		c.intents = append(c.intents, intent{kind: intentOnce, value: v})
	}
}

// ReturnEach makes successive calls return successive values.
//
// A value that implements error is returned as call error.
// Calls beyond the last value fail with ErrExhausted.
func ReturnEach(values ...interface{}) Option {
	return func(c *config) {
		c.intents = append(c.intents, intent{kind: intentEach, values: append([]interface{}(nil), values...)})
	}
}

// ReturnCall makes every call delegate to fn with call arguments.
func ReturnCall(fn CallFunc) Option {
	return func(c *config) {
		c.intents = append(c.intents, intent{kind: intentCall, fn: fn})
	}
}

// ReturnError makes every call fail with err.
func ReturnError(err error) Option {
	return func(c *config) {
		c.intents = append(c.intents, intent{kind: intentError, err: err})
	}
}

// WithMethod sets method name that is used to record calls, default "Call".
func WithMethod(name string) Option {
	return func(c *config) {
		c.method = name
	}
}

// WithTest sets test reporter of underlying mock.Mock.
//
// With reporter set, unexpected calls fail the test instead of panicking.
func WithTest(t mock.TestingT) Option {
	return func(c *config) {
		c.test = t
	}
}

// WithLogger enables debug logging of stub calls.
func WithLogger(logger ctxd.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithSetup provides access to underlying mock.Mock right after construction.
//
// Expectations registered in setup take part in default (no intent) behavior.
func WithSetup(setup func(m *mock.Mock)) Option {
	return func(c *config) {
		c.setup = append(c.setup, setup)
	}
}
