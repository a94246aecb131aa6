package entity

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrStateConflict      = errors.New("state conflict")
	ErrInvalidTransition  = errors.New("invalid ride transition")
	ErrUnreachable        = errors.New("collaborator unreachable")
	ErrUnexpectedResponse = errors.New("unexpected collaborator response")
)
