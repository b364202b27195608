package gridcalc

import "errors"

// ErrMalformedRef indicates a reference token cannot be parsed as a cell
// coordinate.
var ErrMalformedRef = errors.New("malformed reference")

// ErrOutOfBounds indicates a translated reference would fall outside
// row/column >= 1.
var ErrOutOfBounds = errors.New("reference out of bounds")

// ErrInvalidRef indicates a formula reads a cell that is itself invalid.
var ErrInvalidRef = errors.New("invalid reference")

// Per-cell error messages surfaced through CellView.ErrorMessage.
// Nothing here is fatal to the grid: every failure is localized to one
// cell's invalid/errorMessage pair.
const (
	msgCircularDependency = "Circular dependency"
	msgInvalidFormula     = "Invalid formula"
)

// invalidRefPlaceholder replaces a single reference token that a copy or
// move would push outside the grid. Only that token is invalidated, the
// operation otherwise continues.
const invalidRefPlaceholder = "[invalid ref]"
