package container

import (
	"errors"
	"strconv"
)

var (
	// ErrUnknownType is returned when a scanned identifier is not catalogued.
	ErrUnknownType = errors.New("container: type not catalogued")
	// ErrCapabilityMismatch is returned when a type declares an interface it
	// does not implement.
	ErrCapabilityMismatch = errors.New("container: declared capability not implemented")
	// ErrConstructor is returned when a constructor panics or builds the
	// wrong type.
	ErrConstructor = errors.New("container: constructor failed")
	// ErrNoDefaultConstructor is returned when a bean's type cannot be
	// constructed without arguments, which injection requires.
	ErrNoDefaultConstructor = errors.New("container: no default constructor")
	// ErrNotAssignable is returned when a resolved dependency does not fit
	// the target field.
	ErrNotAssignable = errors.New("container: dependency not assignable")
)

// InstantiationError reports a type the container could not construct.
type InstantiationError struct {
	Type string
	Err  error
}

func (e *InstantiationError) Error() string {
	return "container: instantiate " + strconv.Quote(e.Type) + ": " + e.Err.Error()
}

func (e *InstantiationError) Unwrap() error { return e.Err }

// UnsatisfiedDependencyError reports an injection point with nothing
// registered under its key.
type UnsatisfiedDependencyError struct {
	Bean  string
	Field string
	Key   string
}

func (e *UnsatisfiedDependencyError) Error() string {
	// Example: container: field[mathService] of app.MathController could not be autowired: no bean "mathService"
	return "container: field[" + e.Field + "] of " + e.Bean +
		" could not be autowired: no bean " + strconv.Quote(e.Key)
}

// WiringError wraps the failure that stopped a bean's injection.
type WiringError struct {
	Bean string
	Err  error
}

func (e *WiringError) Error() string {
	return "container: wire " + e.Bean + ": " + e.Err.Error()
}

func (e *WiringError) Unwrap() error { return e.Err }
