// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
)

const (
	// ScopeCompile dependencies are needed to compile and to run.
	ScopeCompile DependencyScope = "compile"
	// ScopeProvided dependencies are supplied by the host at runtime.
	ScopeProvided DependencyScope = "provided"
	// ScopeRuntime dependencies are only needed to run.
	ScopeRuntime DependencyScope = "runtime"
	// ScopeTest dependencies are only needed by tests.
	ScopeTest DependencyScope = "test"
	// ScopeSystem dependencies are resolved from an explicit local path.
	ScopeSystem DependencyScope = "system"
	// ScopeImport marks a bill-of-materials import; never a real file.
	ScopeImport DependencyScope = "import"
)

// ErrInvalidDependencyScope is the sentinel error wrapped by InvalidDependencyScopeError.
var ErrInvalidDependencyScope = errors.New("invalid dependency scope")

type (
	// DependencyScope classifies when a resolved dependency is needed.
	// The zero value is treated as ScopeCompile, the default of the host
	// build tool.
	DependencyScope string

	// InvalidDependencyScopeError is returned when a DependencyScope value is
	// not one of the known scopes.
	InvalidDependencyScopeError struct {
		Value DependencyScope
	}
)

// String returns the string representation of the DependencyScope.
func (s DependencyScope) String() string { return string(s) }

// Normalized returns ScopeCompile for the zero value and s otherwise.
func (s DependencyScope) Normalized() DependencyScope {
	if s == "" {
		return ScopeCompile
	}
	return s
}

// Validate returns an error if the scope is not recognized.
func (s DependencyScope) Validate() error {
	switch s.Normalized() {
	case ScopeCompile, ScopeProvided, ScopeRuntime, ScopeTest, ScopeSystem, ScopeImport:
		return nil
	default:
		return &InvalidDependencyScopeError{Value: s}
	}
}

// NeededAtRuntime reports whether artifacts of this scope must be present
// when the module executes. Only compile and runtime scopes qualify.
func (s DependencyScope) NeededAtRuntime() bool {
	switch s.Normalized() {
	case ScopeCompile, ScopeRuntime:
		return true
	default:
		return false
	}
}

// Error implements the error interface for InvalidDependencyScopeError.
func (e *InvalidDependencyScopeError) Error() string {
	return fmt.Sprintf("invalid dependency scope %q (valid: compile, provided, runtime, test, system, import)", e.Value)
}

// Unwrap returns ErrInvalidDependencyScope for errors.Is() compatibility.
func (e *InvalidDependencyScopeError) Unwrap() error { return ErrInvalidDependencyScope }
