package model

import "errors"

// Error types for the model package. All of them signal a model-authoring
// defect: they are raised at the point of detection and are not retried.
var (
	// ErrDomainMismatch is returned when a variable and its equation are
	// defined over different non-empty domains.
	ErrDomainMismatch = errors.New("model: variable and equation domains differ")

	// ErrDuplicateVariable is returned when two submodels both define an
	// rhs entry for the same state variable.
	ErrDuplicateVariable = errors.New("model: duplicate variables")

	// ErrMissingInitialCondition is returned by the well-posedness check
	// when an rhs variable has no initial condition.
	ErrMissingInitialCondition = errors.New("model: no initial condition given for variable")

	// ErrMissingBoundaryCondition is returned by the well-posedness check
	// when a spatially varying equation has no matching boundary condition.
	ErrMissingBoundaryCondition = errors.New("model: no boundary condition given for variable")

	// ErrVariableNotFound is returned when indexing a model by a variable
	// that has no rhs entry.
	ErrVariableNotFound = errors.New("model: variable not found in rhs")
)
