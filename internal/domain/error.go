package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Plan job lifecycle errors
	ErrJobNotFound        = errors.New("plan job not found")
	ErrJobConflict        = errors.New("plan job status changed concurrently")
	ErrJobAlreadyTerminal = errors.New("plan job already reached a terminal status")
	ErrDispatchFailed     = errors.New("planner dispatch failed")
	ErrRetryLimitExceeded = errors.New("plan job retry limit exceeded")

	// Callback / materialization errors
	ErrInvalidCallbackPayload = errors.New("invalid planner callback payload")
	ErrDiffKeyNotFound        = errors.New("diff key matches no itinerary node")
	ErrCallbackInFlight       = errors.New("another callback for this job is being processed")

	// Infra errors surfaced to use cases
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
