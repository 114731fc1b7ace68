package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrNotChannelOwner    = errors.New("user does not own this channel")
	ErrChannelClaimed     = errors.New("channel is already claimed")
	ErrNoActiveSession    = errors.New("no active session for this state")
)
