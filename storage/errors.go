package storage

// PersistenceError reports a failed store operation. It is fatal for the
// operation that hit it; rows written earlier stay committed, and the caller
// recovers by recomputing and re-publishing.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }
