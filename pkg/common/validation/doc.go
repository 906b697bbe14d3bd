// Package validation provides common validation utilities for configuration
// parameters across the backflow library.
//
// Constructors use these helpers so that rejected values surface as a
// *errors.ValidationError with a consistent message and hint.
package validation
