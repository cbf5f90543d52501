package minerva

import "errors"

// Sentinel errors returned by the package.
var (
	// ErrClosed is returned when attempting to use a closed [Session].
	ErrClosed = errors.New("minerva: session is closed")

	// ErrListPageNotFound is returned when the list page cannot be
	// re-established within the recovery attempt bound.
	ErrListPageNotFound = errors.New("minerva: list page not found")

	// ErrNoTab is returned when attaching and the browser exposes no
	// usable page target.
	ErrNoTab = errors.New("minerva: no open page tab to attach to")
)
