package mockish

import (
	"errors"

	"github.com/swaggest/usecase/status"
)

var (
	// ErrInvalidArgument is returned when stub construction options conflict,
	// for example when more than one return intent is given.
	ErrInvalidArgument = status.Wrap(errors.New("invalid stub configuration"), status.InvalidArgument)

	// ErrExhausted is returned by a call to a stub configured with ReturnOnce or ReturnEach
	// once all of its values were handed out.
	ErrExhausted = status.Wrap(errors.New("stub exhausted"), status.ResourceExhausted)

	// ErrUnexpectedType is returned by As when stub result can not be converted to requested type.
	ErrUnexpectedType = status.Wrap(errors.New("unexpected result type"), status.FailedPrecondition)
)

// ErrWithCanonicalStatus exposes canonical status code.
type ErrWithCanonicalStatus interface {
	error
	Status() status.Code
}

// StatusOf returns canonical status code of error.
//
// Nil error yields status.OK, error without canonical status yields status.Unknown.
func StatusOf(err error) status.Code {
	if err == nil {
		return status.OK
	}

	var withCanonicalStatus ErrWithCanonicalStatus

	if errors.As(err, &withCanonicalStatus) {
		return withCanonicalStatus.Status()
	}

	return status.Unknown
}
