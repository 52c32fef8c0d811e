package analysis

import (
	"errors"
	"fmt"
)

// ErrMediaUnavailable is the only failure that aborts an analysis.
var ErrMediaUnavailable = errors.New("media unavailable")

type FailureKind string

const (
	// FailureDisabled means the dependency has no credentials configured.
	FailureDisabled  FailureKind = "disabled"
	FailureReported  FailureKind = "reported"
	FailureTransport FailureKind = "transport"
	FailureMalformed FailureKind = "malformed"
)

// DependencyError describes a failed call to an external analysis service.
type DependencyError struct {
	Dependency string
	Kind       FailureKind
	Err        error
}

func (e *DependencyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Dependency, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Dependency, e.Kind, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func Disabled(dependency string) error {
	return &DependencyError{Dependency: dependency, Kind: FailureDisabled}
}

func Reported(dependency string, err error) error {
	return &DependencyError{Dependency: dependency, Kind: FailureReported, Err: err}
}

func Transport(dependency string, err error) error {
	return &DependencyError{Dependency: dependency, Kind: FailureTransport, Err: err}
}

func Malformed(dependency string, err error) error {
	return &DependencyError{Dependency: dependency, Kind: FailureMalformed, Err: err}
}

// KindOf reports the failure kind of err, defaulting to FailureTransport for
// errors that did not come from a dependency client.
func KindOf(err error) FailureKind {
	var depErr *DependencyError
	if errors.As(err, &depErr) {
		return depErr.Kind
	}
	return FailureTransport
}
