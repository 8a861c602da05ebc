package statefile

import "errors"

// Sentinel kinds for state persistence errors.
var (
	ErrNotFound = errors.New("state file not found")
	ErrRead     = errors.New("state file read failed")
	ErrWrite    = errors.New("state file write failed")
	ErrEncode   = errors.New("state encode failed")
	ErrDecode   = errors.New("state decode failed")
)
