package eventstore

import (
	"git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.StoreError("could not open history database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.StoreError("failed to initialize history schema").Build()

	// ErrEventAppendFailed indicates appending an event failed.
	ErrEventAppendFailed = errors.StoreError("failed to append event to history").Build()

	// ErrEventQueryFailed indicates querying events failed.
	ErrEventQueryFailed = errors.StoreError("failed to query history events").Build()
)

func storeErr(base error, cause error) error {
	ce, ok := errors.AsClassified(base)
	if !ok {
		return base
	}
	return errors.WrapError(cause, ce.Category(), ce.Message()).WithSeverity(ce.Severity()).Build()
}
