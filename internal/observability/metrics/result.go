package metrics

import (
	"errors"

	"maintenance-kpi/internal/failure"
)

// ResultOf maps an operation error to a result label.
func ResultOf(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, failure.ErrNoData):
		return resultNoData
	case errors.Is(err, failure.ErrInvalidArgument):
		return resultInvalid
	case errors.Is(err, failure.ErrConflict):
		return resultConflict
	case errors.Is(err, failure.ErrNotFound):
		return resultNotFound
	default:
		return resultError
	}
}
