// Package simerrors holds the sentinel error values returned by the
// simulation core so callers can branch on failure kind with errors.Is
// instead of string matching.
package simerrors

import "errors"

var (
	ErrInvalidCell        = errors.New("simerrors: invalid cell character")
	ErrOutOfBounds        = errors.New("simerrors: location out of bounds")
	ErrNoPath             = errors.New("simerrors: no path to target")
	ErrNoCandidate        = errors.New("simerrors: no candidate location known")
	ErrCapacityViolation  = errors.New("simerrors: capacity violation")
	ErrIllegalStep        = errors.New("simerrors: illegal step, not adjacent or blocked")
	ErrStructureMissing   = errors.New("simerrors: structure no longer present")
	ErrCellOccupied       = errors.New("simerrors: cell already occupied")
	ErrPersonNotFound     = errors.New("simerrors: person not found")
	ErrConfigKeyMissing   = errors.New("simerrors: config key missing and no default supplied")
)
