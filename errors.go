package sietch

import "errors"

// Sentinel errors for the failure modes of the core.
// Permission checks return (false, nil) for denied access; these errors
// mean the authorization system itself cannot answer. The taxonomy matters
// for callers: schema and tuple errors are permanent and must not be
// retried, store errors are transient and safe to retry with backoff.
//
// Use the Is*Err helper functions to classify a wrapped error.
var (
	// ErrInvalidSchema is returned when an authorization model fails
	// validation at load time: a relation references an undefined relation
	// or an unknown object type, a link relation is not directly
	// assignable, or the relation graph contains a cycle. Permanent;
	// bootstrap treats it as fatal.
	ErrInvalidSchema = errors.New("sietch: invalid authorization model")

	// ErrRelationNotFound is returned when a check or write names a
	// relation that the loaded model does not define for the object's
	// type.
	ErrRelationNotFound = errors.New("sietch: relation not defined for object type")

	// ErrInvalidTuple is returned when a write contains a tuple whose
	// relation does not exist in the model for the object's type.
	// Permanent; the batch is rejected as a whole.
	ErrInvalidTuple = errors.New("sietch: tuple relation not in model")

	// ErrMissingModel is returned by stores that have not had a model
	// installed yet. Writes cannot be validated without one.
	ErrMissingModel = errors.New("sietch: authorization model not installed")

	// ErrStoreUnavailable is returned when the tuple store cannot be
	// reached or an operation's deadline expires. Transient; callers
	// should retry writes with backoff. Checks made through Allowed fail
	// closed on this error.
	ErrStoreUnavailable = errors.New("sietch: tuple store unavailable")

	// ErrResolutionDepth is returned when userset resolution exceeds the
	// checker's depth limit. Well-formed models have bounded expression
	// depth, so hitting this indicates a malformed model or store state.
	ErrResolutionDepth = errors.New("sietch: userset resolution depth exceeded")
)

// IsInvalidSchemaErr returns true if err is or wraps ErrInvalidSchema.
func IsInvalidSchemaErr(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}

// IsRelationNotFoundErr returns true if err is or wraps ErrRelationNotFound.
func IsRelationNotFoundErr(err error) bool {
	return errors.Is(err, ErrRelationNotFound)
}

// IsInvalidTupleErr returns true if err is or wraps ErrInvalidTuple.
func IsInvalidTupleErr(err error) bool {
	return errors.Is(err, ErrInvalidTuple)
}

// IsMissingModelErr returns true if err is or wraps ErrMissingModel.
func IsMissingModelErr(err error) bool {
	return errors.Is(err, ErrMissingModel)
}

// IsStoreUnavailableErr returns true if err is or wraps ErrStoreUnavailable.
func IsStoreUnavailableErr(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
