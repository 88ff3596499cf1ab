// Package errs classifies the error and warning conditions nested Kriging
// can raise, per spec §7. It is deliberately smaller than a general-purpose
// error-classification package (compare
// C360Studio-semstreams/errors/errors.go's transient/invalid/fatal taxonomy
// plus circuit-breaker support): a synchronous numerical kernel only ever
// needs the three kinds below, never retries or transience.
package errs

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors, matched with errors.Is by callers.
var (
	ErrInvalidShape        = errors.New("invalid shape")
	ErrNotPositiveDefinite = errors.New("correlation matrix not positive definite")
	ErrSingularSystem      = errors.New("singular aggregation system")
)

// InvalidShape reports a dimension mismatch for the named argument.
func InvalidShape(argument string, expected, actual any) error {
	return fmt.Errorf("%w: %s: expected %v, got %v", ErrInvalidShape, argument, expected, actual)
}

// NotPositiveDefinite reports that subgroup idx's correlation matrix failed
// to factorise even after the nugget retry ladder.
func NotPositiveDefinite(subgroup int) error {
	return fmt.Errorf("%w: subgroup %d", ErrNotPositiveDefinite, subgroup)
}

// SingularSystem reports that the aggregation system at prediction point
// query failed to factorise even after the nugget retry ladder.
func SingularSystem(query int) error {
	return fmt.Errorf("%w: prediction point %d", ErrSingularSystem, query)
}

// Warning is a non-fatal diagnostic, buffered during a phase and flushed at
// its boundary so output ordering does not depend on thread scheduling.
type Warning struct {
	Message string
}

// Warnings collects Warning values from concurrent phases. Safe for
// concurrent use; Add may be called from any pool worker.
type Warnings struct {
	mu    sync.Mutex
	items []Warning
}

// Add appends a formatted warning.
func (w *Warnings) Add(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = append(w.items, Warning{Message: fmt.Sprintf(format, args...)})
}

// Drain returns and clears the buffered warnings.
func (w *Warnings) Drain() []Warning {
	w.mu.Lock()
	defer w.mu.Unlock()
	items := w.items
	w.items = nil
	return items
}
