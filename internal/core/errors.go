// Package core defines sentinel errors.
package core

import "errors"

var (
	// Buffer errors
	ErrBufferTooSmall = errors.New("argus: chunk exceeds buffer capacity")
	ErrFraming        = errors.New("argus: frame length exceeds buffer capacity")

	// Session errors
	ErrSessionActive  = errors.New("argus: session already active")
	ErrSessionStopped = errors.New("argus: session stopped")

	// Collaborator errors
	ErrDimensionsInvalid = errors.New("argus: invalid stream dimensions")
	ErrStreamStatus      = errors.New("argus: unexpected stream response status")

	// Registry errors
	ErrSourceNotFound = errors.New("argus: frame source not found")
	ErrSinkNotFound   = errors.New("argus: display sink not found")
)
