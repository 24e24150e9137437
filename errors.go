package concord

import "errors"

var (
	// ErrMalformedPayload indicates a payload that cannot construct an
	// entity, typically a first observation with no identity field. The
	// failed patch aborts without touching any other cached entity.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrWrongScope indicates a resolve called with an entity instance
	// owned by a different scope than the manager. This is a caller
	// error and is never swallowed.
	ErrWrongScope = errors.New("entity belongs to a different scope")
)
