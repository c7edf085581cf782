package mockish

import (
	"fmt"
	"reflect"
)

// As converts untyped stub result to a typed one.
//
// It is handy for hand-written fakes that delegate to stubs:
//
//	func (c *fakeDoer) Do(req *http.Request) (*http.Response, error) {
//		return mockish.As[*http.Response](c.stub.Call(req))
//	}
//
// Nil value yields zero T, value of another type yields ErrUnexpectedType
// unless err is already set.
func As[T any](v interface{}, err error) (T, error) {
	var zero T

	if v == nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		if err == nil {
			err = fmt.Errorf("%w: %T, expected %s", ErrUnexpectedType, v, reflect.TypeOf((*T)(nil)).Elem())
		}

		return zero, err
	}

	return t, err
}
