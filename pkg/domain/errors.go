package domain

import "errors"

// ErrUnknownAlgorithm is returned when an algorithm key does not match any supported driver.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// ErrSessionNotFound is returned when a session ID cannot be found in the registry.
var ErrSessionNotFound = errors.New("session not found")

// ErrRunCancelled is returned by drivers when their run was cancelled by a hard reset.
var ErrRunCancelled = errors.New("run cancelled")

// ErrInvalidTransition is returned when a control is not valid in the current status.
var ErrInvalidTransition = errors.New("invalid transition")
