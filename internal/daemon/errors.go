// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import "errors"

var (
	// ErrAlreadyStarted is returned when Run is called twice.
	ErrAlreadyStarted = errors.New("manager already started")

	// ErrManagerNotStarted is returned when trying to shutdown a manager that hasn't started
	ErrManagerNotStarted = errors.New("manager not started")

	// ErrUnknownTransport is returned for a transport kind with no factory.
	ErrUnknownTransport = errors.New("unknown transport kind")
)
