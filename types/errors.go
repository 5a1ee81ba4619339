package types

import "fmt"

// ConnectionError indicates the engine was unreachable or the transport
// failed before a well-formed engine response arrived.
type ConnectionError struct {
	Op  string // the engine operation that failed, e.g. "search"
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("engine %s failed: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NotFoundError indicates a fetch-by-id yielded no document.
type NotFoundError struct {
	Index string
	ID    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %s not found in %s", e.ID, e.Index)
}

// VersionConflictError indicates an optimistic update collided with a
// concurrent write. It is never retried by the core.
type VersionConflictError struct {
	Index   string
	ID      string
	Version int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s/%s (version %d)", e.Index, e.ID, e.Version)
}

// ValidationError names the first schema property whose stored value did
// not satisfy its declared type, or a required property that is absent.
type ValidationError struct {
	Model    string
	Property string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s.%s: %s", e.Model, e.Property, e.Reason)
}

// MissingIdentifierError indicates an update or remove was attempted on a
// document that has no engine-assigned id.
type MissingIdentifierError struct {
	Op string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("%s requires a document id", e.Op)
}

// UnregisteredModelError indicates a lookup of a model name that was
// never registered.
type UnregisteredModelError struct {
	Name string
}

func (e *UnregisteredModelError) Error() string {
	return fmt.Sprintf("model %q is not registered", e.Name)
}
