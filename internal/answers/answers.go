// Package answers wraps the two external providers the search API leans on:
// a spelling-correction service and an instant-answer API. Both are best
// effort; callers degrade to uncached passthrough when a provider is down.
package answers

import "errors"

// ErrUnavailable is returned when a provider cannot be reached or responds
// with a non-2xx status. Callers treat it as a soft failure.
var ErrUnavailable = errors.New("answers: provider unavailable")
