package operators

import (
	"fmt"

	"github.com/kbukum/difflow/errors"
)

// guard recovers a panic raised by a user-supplied callback (comparator,
// reducer, key extractor, predicate) during fn and turns it into a
// CallbackFailure, so that a broken callback surfaces as a step/run error
// rather than crashing the host. It must be deferred at the top of every
// Step that calls into user code, before any mutation of operator state
// or output edges, so a recovered panic leaves both untouched.
func guard(operatorName string, errp *error) {
	if r := recover(); r != nil {
		if err, ok := r.(error); ok {
			*errp = errors.CallbackFailure(operatorName, err)
			return
		}
		*errp = errors.CallbackFailure(operatorName, fmt.Errorf("%v", r))
	}
}
