package storedproc

import (
	"context"
	"errors"
	"strings"

	"github.com/storefrontlabs/storefront-backend/pkg/db"
)

// SQLSTATE classes that mean the routine itself failed rather than the data or
// the connection: raised exceptions, external routine and invocation errors,
// and SQL routine errors.
var routineErrorClasses = []string{"P0", "38", "39", "2F"}

// IsRoutineUnavailable reports whether err means the named routine could not
// serve the call, so an inline query should take over. Cancellation,
// connection loss, constraint and data errors are never classified here.
func IsRoutineUnavailable(err error, routine string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if code := db.SQLState(err); code != "" {
		if code == db.SQLStateUndefinedFunction {
			return true
		}
		if len(code) < 2 {
			return false
		}
		for _, class := range routineErrorClasses {
			if code[:2] == class {
				return true
			}
		}
		return false
	}

	// SQLite has no stored routines; calls fail as an unknown function or an
	// unknown table-valued function.
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "no such function") && !strings.Contains(msg, "no such table") {
		return false
	}
	return routine == "" || strings.Contains(msg, strings.ToLower(routine))
}
