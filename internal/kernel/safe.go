package kernel

import (
	"fmt"
	"runtime/debug"
)

// PanicError is a panic recovered from module, driver or handler code.
type PanicError struct {
	// Scope names the call that panicked.
	Scope string
	// Value is the value passed to panic.
	Value any
	// Stack is the goroutine stack at the point of recovery.
	Stack []byte
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: panic: %v", e.Scope, e.Value)
}

// runSafely calls fn, tagging its error with scope and turning a panic into
// a *PanicError.
func runSafely(scope string, fn func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &PanicError{Scope: scope, Value: recovered, Stack: debug.Stack()}
		}
	}()

	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", scope, err)
	}

	return nil
}
