package response

// Adapter creates library-specific response from Data.
type Adapter[R any] interface {
	Create(d Data) R
}

// AdapterFunc implements Adapter with a function.
type AdapterFunc[R any] func(d Data) R

// Create calls f(d).
func (f AdapterFunc[R]) Create(d Data) R {
	return f(d)
}

// New prepares data and creates response with adapter.
func New[R any](a Adapter[R], options ...Option) (R, error) {
	d, err := Prepare(options...)
	if err != nil {
		var zero R

		return zero, err
	}

	return a.Create(d), nil
}

// FromJSON prepares JSON data and creates response with adapter.
func FromJSON[R any](a Adapter[R], v interface{}, options ...Option) (R, error) {
	d, err := PrepareJSON(v, options...)
	if err != nil {
		var zero R

		return zero, err
	}

	return a.Create(d), nil
}

// FromFile prepares data from file and creates response with adapter.
func FromFile[R any](a Adapter[R], path string, options ...Option) (R, error) {
	d, err := PrepareFile(path, options...)
	if err != nil {
		var zero R

		return zero, err
	}

	return a.Create(d), nil
}
